package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPronunciationScore_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, PronunciationScore("GoldenTable"), PronunciationScore("GoldenTable"))
	}
}

func TestPronunciationScore_LengthBands(t *testing.T) {
	short := PronunciationScore("Ab")
	optimal := PronunciationScore("Golden")
	long := PronunciationScore("AnExtremelyLongBusinessName")

	assert.Greater(t, optimal, short)
	assert.Greater(t, optimal, long)
}

func TestPronunciationScore_RepeatedRunPenalty(t *testing.T) {
	assert.Greater(t, PronunciationScore("Golden"), PronunciationScore("Gooolden"))
}

func TestPronunciationScore_Clamped(t *testing.T) {
	score := PronunciationScore("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestSearchScore_IndustryKeywordBonus(t *testing.T) {
	withKeyword := SearchScore("SeoulKitchen", "restaurant")
	without := SearchScore("SeoulVentur", "restaurant")

	assert.Greater(t, withKeyword, without)
}

func TestSearchScore_GenericnessPenalty(t *testing.T) {
	assert.Greater(t, SearchScore("RubyShop", "retail"), SearchScore("BestShop", "retail"))
}

func TestSearchScore_UnknownIndustryFallsBackToGenericKeywords(t *testing.T) {
	score := SearchScore("StarGroup", "spacefaring")
	assert.Greater(t, score, SearchScore("Starlings", "spacefaring"))
}

func TestOverallScore_Weighting(t *testing.T) {
	config := DefaultScoringConfig()

	assert.InDelta(t, 60.0, config.OverallScore(0, 100), 0.001)
	assert.InDelta(t, 40.0, config.OverallScore(100, 0), 0.001)
	assert.InDelta(t, 100.0, config.OverallScore(100, 100), 0.001)

	custom := ScoringConfig{PronunciationWeight: 0.5, SearchWeight: 0.5}
	assert.InDelta(t, 50.0, custom.OverallScore(0, 100), 0.001)
}
