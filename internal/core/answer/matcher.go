// Package answer normalizes and fuzzy-compares free-text answers
// against a card's canonical answer.
package answer

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultThreshold is the similarity above which an answer counts as correct.
const DefaultThreshold = 0.8

// Normalize lowercases, trims surrounding whitespace and strips periods
// and commas so that cosmetic differences never fail a match.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	return s
}

// Check compares a user answer to the correct answer with the default threshold.
func Check(userAnswer, correctAnswer string) (bool, float64) {
	return CheckThreshold(userAnswer, correctAnswer, DefaultThreshold)
}

// CheckThreshold reports whether the answers match and the similarity in [0,1].
// Exact normalized matches score 1.0; otherwise similarity is a character-level
// diff ratio. The similarity is reported for display, not partial credit.
func CheckThreshold(userAnswer, correctAnswer string, threshold float64) (bool, float64) {
	userNorm := Normalize(userAnswer)
	correctNorm := Normalize(correctAnswer)

	if userNorm == correctNorm {
		return true, 1.0
	}

	similarity := ratio(userNorm, correctNorm)
	return similarity >= threshold, similarity
}

// ratio is 2*M/T where M is the number of characters the two strings have in
// common and T is the total number of characters. Symmetric and in [0,1].
func ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	common := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			common += len([]rune(d.Text))
		}
	}
	return float64(2*common) / float64(total)
}
