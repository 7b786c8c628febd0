// Package naming generates scored business name candidates. Generation is
// bounded and duplicate-free across a session's whole history; scoring is a
// pure function of the candidate so repeated runs rank identically.
package naming

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/brandforge/brandforge/pkg/models"
)

const (
	targetSuggestions = 3
	maxAttempts       = 50
	similarityCutoff  = 0.8
)

var (
	// ErrRegenerationLimitExceeded indicates the session used up its
	// regeneration allowance.
	ErrRegenerationLimitExceeded = errors.New("regeneration limit exceeded")

	// ErrInsufficientUniqueNames indicates the bounded generation loop could
	// not produce enough unique candidates.
	ErrInsufficientUniqueNames = errors.New("insufficient unique names")
)

// Generator composes candidate names from keyword tables and scores them.
type Generator struct {
	config ScoringConfig
	rng    *rand.Rand
}

func NewGenerator(config ScoringConfig) *Generator {
	return NewGeneratorWithSeed(config, time.Now().UnixNano())
}

// NewGeneratorWithSeed pins the composition order. Tests use it to make runs
// reproducible.
func NewGeneratorWithSeed(config ScoringConfig, seed int64) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Suggest produces exactly targetSuggestions unique scored candidates, none
// of which collides with seen. The attempt loop is bounded; exhausting it
// yields ErrInsufficientUniqueNames.
func (g *Generator) Suggest(info models.BusinessInfo, seen map[string]struct{}) ([]models.NameSuggestion, error) {
	var suggestions []models.NameSuggestion

	for attempts := 0; len(suggestions) < targetSuggestions && attempts < maxAttempts; attempts++ {
		name := g.compose(info.Industry, info.Region)

		if g.isDuplicate(name, suggestions, seen) {
			continue
		}

		pronunciation := PronunciationScore(name)
		search := SearchScore(name, info.Industry)

		suggestions = append(suggestions, models.NameSuggestion{
			Name:               name,
			Description:        describe(name, info.Industry, info.Region),
			PronunciationScore: pronunciation,
			SearchScore:        search,
			OverallScore:       g.config.OverallScore(pronunciation, search),
		})
	}

	if len(suggestions) < targetSuggestions {
		return nil, fmt.Errorf("%w: got %d of %d after %d attempts",
			ErrInsufficientUniqueNames, len(suggestions), targetSuggestions, maxAttempts)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].OverallScore > suggestions[j].OverallScore
	})

	return suggestions, nil
}

// Regenerate is Suggest guarded by the per-session regeneration allowance.
// count is the number of regenerations already performed.
func (g *Generator) Regenerate(info models.BusinessInfo, seen map[string]struct{}, count int) ([]models.NameSuggestion, error) {
	if count >= models.MaxNameRegenerations {
		return nil, fmt.Errorf("%w: %d of %d used",
			ErrRegenerationLimitExceeded, count, models.MaxNameRegenerations)
	}

	return g.Suggest(info, seen)
}

func (g *Generator) compose(industry, region string) string {
	keywords := industryWords(industry)
	keyword := keywords[g.rng.Intn(len(keywords))]

	var prefix string

	switch g.rng.Intn(5) {
	case 0:
		prefix = adjectives[g.rng.Intn(len(adjectives))]
	case 1:
		if regional, ok := regionKeywords[region]; ok {
			prefix = regional[g.rng.Intn(len(regional))]
		} else {
			prefix = adjectives[g.rng.Intn(len(adjectives))]
		}
	case 2:
		prefix = properNouns[g.rng.Intn(len(properNouns))]
	case 3:
		prefix = englishWords[g.rng.Intn(len(englishWords))]
	default:
		prefix = numberPrefixes[g.rng.Intn(len(numberPrefixes))]
	}

	return capitalize(prefix) + capitalize(keyword)
}

func (g *Generator) isDuplicate(name string, batch []models.NameSuggestion, seen map[string]struct{}) bool {
	lower := strings.ToLower(name)

	if _, ok := seen[lower]; ok {
		return true
	}

	for _, suggestion := range batch {
		if strings.EqualFold(suggestion.Name, name) {
			return true
		}

		if similarity(name, suggestion.Name) > similarityCutoff {
			return true
		}
	}

	return false
}

// similarity is the Jaccard ratio over the character sets of the two names.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := make(map[rune]struct{})
	for _, r := range strings.ToLower(a) {
		setA[r] = struct{}{}
	}

	setB := make(map[rune]struct{})
	for _, r := range strings.ToLower(b) {
		setB[r] = struct{}{}
	}

	common := 0

	for r := range setA {
		if _, ok := setB[r]; ok {
			common++
		}
	}

	total := len(setA) + len(setB) - common
	if total == 0 {
		return 0
	}

	return float64(common) / float64(total)
}

func capitalize(word string) string {
	if word == "" {
		return word
	}

	return strings.ToUpper(word[:1]) + word[1:]
}

var industryDescriptions = map[string]string{
	"restaurant":    "an approachable restaurant name that is easy to remember and evokes local flavor",
	"retail":        "a store name customers can find at a glance, built for brand recognition",
	"service":       "a service business name that conveys professionalism and trust",
	"healthcare":    "a healthcare name signaling care and clinical expertise",
	"education":     "an education brand name that suggests learning and growth",
	"technology":    "a technology name with a modern, capable ring to it",
	"manufacturing": "a manufacturing name that communicates reliability and craft",
	"construction":  "a construction name expressing solidity and expertise",
	"finance":       "a finance name emphasizing stability and credibility",
}

func describe(name, industry, region string) string {
	detail, ok := industryDescriptions[industry]
	if !ok {
		detail = "a name that reflects the character of the business"
	}

	return fmt.Sprintf("'%s' is %s, tuned for the %s market.", name, detail, region)
}
