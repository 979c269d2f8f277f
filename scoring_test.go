/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPolicy() scorePolicy {
	return scorePolicy{unique: 20, shared: 10}
}

func TestScoreRound(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc        string
		categories  []string
		submissions map[string][]string
		policy      scorePolicy
		expected    map[string]int
	}{
		{
			desc:       "shared answers differ only in case and whitespace",
			categories: []string{"color"},
			submissions: map[string][]string{
				"a": {"Red"},
				"b": {"red "},
			},
			policy:   defaultPolicy(),
			expected: map[string]int{"a": 10, "b": 10},
		},
		{
			desc:       "unique answers score full, empty scores nothing",
			categories: []string{"animal"},
			submissions: map[string][]string{
				"a": {"Cat"},
				"b": {"Dog"},
				"c": {""},
			},
			policy:   defaultPolicy(),
			expected: map[string]int{"a": 20, "b": 20, "c": 0},
		},
		{
			desc:       "categories scored independently and summed",
			categories: []string{"city", "country"},
			submissions: map[string][]string{
				"a": {"Paris", "Peru"},
				"b": {"paris", "Portugal"},
			},
			policy:   defaultPolicy(),
			expected: map[string]int{"a": 30, "b": 30},
		},
		{
			desc:       "pileup tier kicks in at three matches when enabled",
			categories: []string{"food"},
			submissions: map[string][]string{
				"a": {"Pizza"},
				"b": {"pizza"},
				"c": {" PIZZA"},
				"d": {"Pasta"},
			},
			policy:   scorePolicy{unique: 20, shared: 10, pileup: 5},
			expected: map[string]int{"a": 5, "b": 5, "c": 5, "d": 20},
		},
		{
			desc:       "three matches score shared when pileup is disabled",
			categories: []string{"food"},
			submissions: map[string][]string{
				"a": {"Pizza"},
				"b": {"pizza"},
				"c": {" PIZZA"},
			},
			policy:   defaultPolicy(),
			expected: map[string]int{"a": 10, "b": 10, "c": 10},
		},
		{
			desc:       "whitespace-only answers are no answers",
			categories: []string{"city"},
			submissions: map[string][]string{
				"a": {"   "},
				"b": {"Berlin"},
			},
			policy:   defaultPolicy(),
			expected: map[string]int{"a": 0, "b": 20},
		},
		{
			desc:       "short answer slices are padded with no-answers",
			categories: []string{"city", "country", "animal"},
			submissions: map[string][]string{
				"a": {"Oslo"},
				"b": {"Oslo", "Norway", "Newt"},
			},
			policy:   defaultPolicy(),
			expected: map[string]int{"a": 10, "b": 50},
		},
		{
			desc:        "no submissions at all",
			categories:  []string{"city"},
			submissions: map[string][]string{},
			policy:      defaultPolicy(),
			expected:    map[string]int{},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			result := scoreRound(tc.categories, tc.submissions, tc.policy)

			assert.Equal(t, tc.expected, result.points)

			for player, points := range result.points {
				assert.GreaterOrEqual(t, points, 0)

				sum := 0
				for _, p := range result.byCategory[player] {
					sum += p
				}
				assert.Equal(t, points, sum, "per-category breakdown must sum to the round total")
			}
		})
	}
}

func TestScoreRoundOrderIndependent(t *testing.T) {
	t.Parallel()

	categories := []string{"city", "country", "animal"}

	first := map[string][]string{
		"a": {"Athens", "Austria", "Ant"},
		"b": {"athens", "Belgium", "Bee"},
		"c": {"Cairo", "belgium", ""},
	}
	second := map[string][]string{
		"c": {"Cairo", "belgium", ""},
		"b": {"athens", "Belgium", "Bee"},
		"a": {"Athens", "Austria", "Ant"},
	}

	require.Equal(t,
		scoreRound(categories, first, defaultPolicy()),
		scoreRound(categories, second, defaultPolicy()),
	)
}

func TestNormalizeAnswer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "red", normalizeAnswer(" Red "))
	assert.Equal(t, "", normalizeAnswer("   "))
	assert.Equal(t, "são paulo", normalizeAnswer("São Paulo"))
}
