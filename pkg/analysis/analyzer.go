// Package analysis produces the business analysis step's result from static
// industry, region and size market data. The analyzer is deterministic: the
// same intake always yields the same score and narrative.
package analysis

import (
	"fmt"
	"time"

	"github.com/brandforge/brandforge/pkg/models"
)

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores the business and assembles insights, trends and
// recommendations from the market tables. Unknown vocabulary values fall back
// to neutral defaults rather than failing.
func (a *Analyzer) Analyze(info models.BusinessInfo) *models.AnalysisResult {
	industry := industryProfileFor(info.Industry)
	region := regionProfileFor(info.Region)
	size := sizeProfileFor(info.Size)

	score := industry.baseScore + region.scoreModifier + size.scoreModifier
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	insights := []string{
		fmt.Sprintf("Industry: %s.", industry.trait),
		fmt.Sprintf("Region: %s.", region.trait),
		fmt.Sprintf("Scale: %s.", size.trait),
	}

	recommendations := append([]string{}, industry.successFactors...)
	recommendations = append(recommendations,
		size.strategy,
		fmt.Sprintf("Lean on the regional advantage: %s. Watch out for %s.", region.advantage, region.challenge),
	)

	return &models.AnalysisResult{
		Summary: fmt.Sprintf(
			"A %s %s business in %s scores %.1f/100 for viability.",
			info.Size, info.Industry, info.Region, score),
		Score:           score,
		Insights:        insights,
		MarketTrends:    append([]string{}, industry.marketTrends...),
		Recommendations: recommendations,
		GeneratedAt:     time.Now().UTC(),
	}
}
