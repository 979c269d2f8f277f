/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"sort"
	"strings"
)

// Round letters are drawn from a per-language alphabet. Letters that
// are hard to answer for (Q, X, and friends) are left out, matching
// how the pen-and-paper game is usually played.
var alphabets = map[string]string{
	"en": "ABCDEFGHIJKLMNOPRSTUVWY",
	"de": "ABCDEFGHIJKLMNOPRSTUVWZ",
}

func supportedLanguages() string {
	langs := make([]string, 0, len(alphabets))
	for lang := range alphabets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	return strings.Join(langs, ", ")
}

// randomLetter draws uniformly from the alphabet for the given
// language, falling back to English if the language is unknown.
func randomLetter(language string) string {
	alphabet, ok := alphabets[language]
	if !ok {
		alphabet = alphabets["en"]
	}

	return string(alphabet[randomIndex(len(alphabet))])
}

// randomIndex returns an unbiased random int in [0, n) using
// crypto/rand, via rejection sampling.
func randomIndex(n int) int {
	limit := 256 - (256 % n)
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		if int(b[0]) < limit {
			return int(b[0]) % n
		}
	}
}
