/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomLetter(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		assert.Contains(t, alphabets["en"], randomLetter("en"))
		assert.Contains(t, alphabets["de"], randomLetter("de"))
	}

	// Unknown languages fall back to English rather than failing.
	assert.Contains(t, alphabets["en"], randomLetter("tlh"))
}

func TestRandomIndexBounds(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 7, 31, 256} {
		for i := 0; i < 200; i++ {
			got := randomIndex(n)
			assert.GreaterOrEqual(t, got, 0)
			assert.Less(t, got, n)
		}
	}
}

func TestSupportedLanguages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "de, en", supportedLanguages())
}
