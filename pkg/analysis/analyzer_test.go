package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/brandforge/pkg/models"
)

func TestAnalyze_ScoreComposition(t *testing.T) {
	analyzer := NewAnalyzer()

	// restaurant 75 + seoul 10 + small -5.
	result := analyzer.Analyze(models.BusinessInfo{
		Industry: "restaurant",
		Region:   "seoul",
		Size:     "small",
	})

	assert.InDelta(t, 80.0, result.Score, 0.001)
	assert.Len(t, result.Insights, 3)
	assert.NotEmpty(t, result.MarketTrends)
	assert.NotEmpty(t, result.Recommendations)
	assert.NotEmpty(t, result.Summary)
}

func TestAnalyze_Deterministic(t *testing.T) {
	analyzer := NewAnalyzer()
	info := models.BusinessInfo{Industry: "technology", Region: "busan", Size: "large"}

	first := analyzer.Analyze(info)
	second := analyzer.Analyze(info)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Insights, second.Insights)
	assert.Equal(t, first.MarketTrends, second.MarketTrends)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestAnalyze_UnknownVocabularyFallsBack(t *testing.T) {
	analyzer := NewAnalyzer()

	result := analyzer.Analyze(models.BusinessInfo{
		Industry: "spacefaring",
		Region:   "atlantis",
		Size:     "tiny",
	})

	require.NotNil(t, result)
	// other 70 + seoul default 10 + medium default 0.
	assert.InDelta(t, 80.0, result.Score, 0.001)
}

func TestAnalyze_ScoreBounds(t *testing.T) {
	analyzer := NewAnalyzer()

	for industry := range map[string]struct{}{"restaurant": {}, "healthcare": {}, "agriculture": {}} {
		for _, region := range []string{"seoul", "jeonbuk", "jeju"} {
			for _, size := range []string{"small", "medium", "large"} {
				result := analyzer.Analyze(models.BusinessInfo{Industry: industry, Region: region, Size: size})
				assert.GreaterOrEqual(t, result.Score, 0.0)
				assert.LessOrEqual(t, result.Score, 100.0)
			}
		}
	}
}
