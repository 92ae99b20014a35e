package analyzer

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// LabelDissimilarity measures how different two labels are; 0 means identical.
// Results above 1 are allowed and are clamped by the consumer.
type LabelDissimilarity func(reference, hypothesis string) float64

// unitEditOptions counts insertions, deletions and substitutions as one edit each
var unitEditOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// LabelEditDistance returns the character-level Levenshtein distance between two labels
func LabelEditDistance(a, b string) int {
	if a == b {
		return 0
	}
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), unitEditOptions)
}

// CharacterErrorRate returns the edit distance between the labels divided by the
// reference length in characters. Leading and trailing whitespace is ignored.
// An empty reference yields 0 against an empty hypothesis and the hypothesis
// length otherwise.
func CharacterErrorRate(reference, hypothesis string) float64 {
	reference = strings.TrimSpace(reference)
	hypothesis = strings.TrimSpace(hypothesis)
	if reference == hypothesis {
		return 0.0
	}

	refLen := len([]rune(reference))
	if refLen == 0 {
		return float64(len([]rune(hypothesis)))
	}

	return float64(LabelEditDistance(reference, hypothesis)) / float64(refLen)
}

// clampUnit limits a dissimilarity to [0, 1]
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
