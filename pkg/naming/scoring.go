package naming

import (
	"strings"
	"unicode"
)

// ScoringConfig weights the two scoring axes. Weights should sum to 1.
type ScoringConfig struct {
	PronunciationWeight float64
	SearchWeight        float64
}

// DefaultScoringConfig mirrors the production weighting: search visibility
// matters more than pronunciation.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PronunciationWeight: 0.4,
		SearchWeight:        0.6,
	}
}

// PronunciationScore rates how easily a name is spoken. Pure function of the
// name: length band, consonant/vowel balance and repeated-character runs.
// Scores are clamped to [0, 100].
func PronunciationScore(name string) float64 {
	score := 60.0
	runes := []rune(name)
	length := len(runes)

	switch {
	case length < 3:
		score -= 30
	case length > 14:
		score -= 20
	case length >= 4 && length <= 10:
		score += 10
	}

	consonants := 0
	vowels := 0

	for _, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}

		if isVowel(r) {
			vowels++
		} else {
			consonants++
		}
	}

	if consonants > 0 && vowels > 0 {
		ratio := float64(min(consonants, vowels)) / float64(max(consonants, vowels))
		score += ratio * 10
	}

	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == runes[i+1] {
			score -= 5
		}
	}

	return clamp(score)
}

// SearchScore rates how findable a name is for its industry. Pure function of
// name and industry: keyword relevance, genericness penalty, memorability
// bonus. Scores are clamped to [0, 100].
func SearchScore(name, industry string) float64 {
	score := 70.0
	lower := strings.ToLower(name)

	for _, word := range industryWords(industry) {
		if strings.Contains(lower, word) {
			score += 15

			break
		}
	}

	for _, word := range genericWords {
		if strings.Contains(lower, word) {
			score -= 10
		}
	}

	length := len([]rune(name))

	switch {
	case length <= 6:
		score += 10
	case length > 12:
		score -= 5
	}

	if isAlphanumeric(name) {
		score += 5
	}

	return clamp(score)
}

// OverallScore combines the two axes under the configured weights.
func (c ScoringConfig) OverallScore(pronunciation, search float64) float64 {
	return pronunciation*c.PronunciationWeight + search*c.SearchWeight
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}

	return false
}

func isAlphanumeric(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	return len(name) > 0
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}

	if score > 100 {
		return 100
	}

	return score
}
