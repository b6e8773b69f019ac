package search

import "strings"

// scoreThreshold is the maximum normalized match score a field occurrence
// may have: error fraction plus location penalty. 0.4 means up to 40% of
// the pattern's characters may mismatch for a match at the field start.
const scoreThreshold = 0.4

// locationScale divides the match start offset for the locality penalty;
// an exact match 40 characters into the field scores 0.4 and is already at
// the threshold.
const locationScale = 100

// maxPatternLen is the widest pattern the bitmask machine supports. Longer
// queries fall back to exact substring search.
const maxPatternLen = 63

// bitapScore returns the best normalized score of an approximate occurrence
// of pattern in text, and whether any occurrence clears the threshold.
// Score 0 is a perfect match at the field start; lower is better. Both
// inputs must already be lower-cased.
func bitapScore(pattern, text []rune) (float64, bool) {
	m := len(pattern)
	if m == 0 || len(text) == 0 {
		return 0, false
	}
	if m > maxPatternLen {
		return substringScore(pattern, text)
	}

	masks := make(map[rune]uint64, m)
	for i, r := range pattern {
		masks[r] |= 1 << uint(i)
	}

	// Error budget: the error fraction alone must stay inside the threshold.
	maxErr := int(scoreThreshold * float64(m))
	accept := uint64(1) << uint(m-1)

	state := make([]uint64, maxErr+1)
	best := -1.0
	found := false

	for j, c := range text {
		cm := masks[c]

		prevOld := state[0]
		state[0] = ((state[0] << 1) | 1) & cm
		for d := 1; d <= maxErr; d++ {
			old := state[d]
			state[d] = (((old << 1) | 1) & cm) | // match
				(((prevOld | state[d-1]) << 1) | 1) | // substitution / deletion
				prevOld // insertion
			prevOld = old
		}

		for d := 0; d <= maxErr; d++ {
			if state[d]&accept == 0 {
				continue
			}
			loc := j - m + 1
			if loc < 0 {
				loc = 0
			}
			score := float64(d)/float64(m) + float64(loc)/locationScale
			if !found || score < best {
				best, found = score, true
			}
			break // higher error counts at the same position only score worse
		}
	}

	if !found || best > scoreThreshold {
		return 0, false
	}
	return best, true
}

// substringScore is the exact-match fallback for over-long patterns.
func substringScore(pattern, text []rune) (float64, bool) {
	idx := strings.Index(string(text), string(pattern))
	if idx < 0 {
		return 0, false
	}
	// Recover the rune offset for the locality penalty.
	loc := len([]rune(string(text)[:idx]))
	score := float64(loc) / locationScale
	if score > scoreThreshold {
		return 0, false
	}
	return score, true
}
