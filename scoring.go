/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import "strings"

// scorePolicy holds the point values awarded per category answer.
// When pileup is positive, answers shared by three or more players
// score pileup instead of shared.
type scorePolicy struct {
	unique int
	shared int
	pileup int
}

func (c *Config) scorePolicy() scorePolicy {
	return scorePolicy{
		unique: c.uniquePoints,
		shared: c.sharedPoints,
		pileup: c.pileupPoints,
	}
}

// roundScore is the result of scoring one round: total points per
// player, plus the per-category breakdown in category order.
type roundScore struct {
	points     map[string]int
	byCategory map[string][]int
}

// normalizeAnswer prepares an answer for uniqueness comparison.
// An empty result counts as "no answer".
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// scoreRound turns a round's submissions into points. It is a pure
// function of its inputs: no player or category iteration order
// affects the outcome, and results are always non-negative.
//
// Per category, every non-empty normalized answer is counted across
// players; unique answers score policy.unique, answers shared by two
// score policy.shared, and answers shared by three or more score
// policy.pileup when set. Empty answers score nothing and do not
// count toward anyone else's tally.
func scoreRound(categories []string, submissions map[string][]string, policy scorePolicy) roundScore {
	result := roundScore{
		points:     make(map[string]int, len(submissions)),
		byCategory: make(map[string][]int, len(submissions)),
	}

	for player := range submissions {
		result.points[player] = 0
		result.byCategory[player] = make([]int, len(categories))
	}

	for i := range categories {
		counts := make(map[string]int, len(submissions))

		for _, answers := range submissions {
			if i >= len(answers) {
				continue
			}
			if normalized := normalizeAnswer(answers[i]); normalized != "" {
				counts[normalized]++
			}
		}

		for player, answers := range submissions {
			if i >= len(answers) {
				continue
			}

			normalized := normalizeAnswer(answers[i])
			if normalized == "" {
				continue
			}

			var awarded int
			switch n := counts[normalized]; {
			case n == 1:
				awarded = policy.unique
			case n >= 3 && policy.pileup > 0:
				awarded = policy.pileup
			default:
				awarded = policy.shared
			}

			result.points[player] += awarded
			result.byCategory[player][i] = awarded
		}
	}

	return result
}
