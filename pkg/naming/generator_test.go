package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/brandforge/pkg/models"
)

var testInfo = models.BusinessInfo{
	Industry: "restaurant",
	Region:   "seoul",
	Size:     "small",
}

func TestSuggest_ReturnsThreeUniqueScoredCandidates(t *testing.T) {
	generator := NewGeneratorWithSeed(DefaultScoringConfig(), 42)

	suggestions, err := generator.Suggest(testInfo, nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	names := make(map[string]struct{})

	for _, suggestion := range suggestions {
		assert.NotEmpty(t, suggestion.Name)
		assert.NotEmpty(t, suggestion.Description)
		assert.GreaterOrEqual(t, suggestion.PronunciationScore, 0.0)
		assert.LessOrEqual(t, suggestion.PronunciationScore, 100.0)
		assert.GreaterOrEqual(t, suggestion.SearchScore, 0.0)
		assert.LessOrEqual(t, suggestion.SearchScore, 100.0)

		lower := strings.ToLower(suggestion.Name)
		_, dup := names[lower]
		assert.False(t, dup, "duplicate name %s", suggestion.Name)
		names[lower] = struct{}{}
	}

	// Candidates come back ranked best first.
	for i := 0; i < len(suggestions)-1; i++ {
		assert.GreaterOrEqual(t, suggestions[i].OverallScore, suggestions[i+1].OverallScore)
	}
}

func TestSuggest_AvoidsSeenNames(t *testing.T) {
	generator := NewGeneratorWithSeed(DefaultScoringConfig(), 42)

	first, err := generator.Suggest(testInfo, nil)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, suggestion := range first {
		seen[strings.ToLower(suggestion.Name)] = struct{}{}
	}

	second, err := generator.Suggest(testInfo, seen)
	require.NoError(t, err)

	for _, suggestion := range second {
		_, dup := seen[strings.ToLower(suggestion.Name)]
		assert.False(t, dup, "name %s repeated across batches", suggestion.Name)
	}
}

func TestSuggest_InsufficientUniqueNames(t *testing.T) {
	generator := NewGeneratorWithSeed(DefaultScoringConfig(), 42)

	// Block the entire composition space for a tiny keyword universe.
	seen := make(map[string]struct{})

	for attempt := 0; attempt < 10000; attempt++ {
		name := generator.compose(testInfo.Industry, testInfo.Region)
		seen[strings.ToLower(name)] = struct{}{}
	}

	_, err := generator.Suggest(testInfo, seen)
	assert.ErrorIs(t, err, ErrInsufficientUniqueNames)
}

func TestRegenerate_EnforcesLimit(t *testing.T) {
	generator := NewGeneratorWithSeed(DefaultScoringConfig(), 42)
	seen := make(map[string]struct{})

	for count := 0; count < models.MaxNameRegenerations; count++ {
		suggestions, err := generator.Regenerate(testInfo, seen, count)
		require.NoError(t, err)
		require.Len(t, suggestions, 3)

		for _, suggestion := range suggestions {
			seen[strings.ToLower(suggestion.Name)] = struct{}{}
		}
	}

	_, err := generator.Regenerate(testInfo, seen, models.MaxNameRegenerations)
	assert.ErrorIs(t, err, ErrRegenerationLimitExceeded)
}

func TestGenerator_ReproducibleWithSeed(t *testing.T) {
	first, err := NewGeneratorWithSeed(DefaultScoringConfig(), 7).Suggest(testInfo, nil)
	require.NoError(t, err)

	second, err := NewGeneratorWithSeed(DefaultScoringConfig(), 7).Suggest(testInfo, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("GoldenTable", "goldentable"), 0.001)
	assert.Less(t, similarity("GoldenTable", "NeoKitchen"), similarityCutoff)
	assert.Zero(t, similarity("", "GoldenTable"))
}
