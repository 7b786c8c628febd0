package provider

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/brandforge/brandforge/pkg/models"
)

const fallbackSchema = `{
	"type": "object",
	"required": ["fallbacks"],
	"properties": {
		"fallbacks": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["step", "style", "url"],
				"properties": {
					"step":  {"type": "string", "minLength": 1},
					"style": {"type": "string", "minLength": 1},
					"url":   {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

type fallbackEntry struct {
	Step  string `json:"step"`
	Style string `json:"style"`
	URL   string `json:"url"`
}

type fallbackFile struct {
	Fallbacks []fallbackEntry `json:"fallbacks"`
}

// FallbackRegistry maps step+style pairs to pre-rendered asset URLs used when
// a provider branch times out or errors. Resolution is deterministic so
// repeated degradations of one session yield identical content.
type FallbackRegistry struct {
	urls map[string]string
}

func fallbackKey(step models.Step, style string) string {
	return string(step) + "/" + style
}

// NewFallbackRegistry returns a registry seeded with built-in defaults.
func NewFallbackRegistry() *FallbackRegistry {
	registry := &FallbackRegistry{urls: make(map[string]string)}

	for _, step := range []models.Step{models.StepSignboard, models.StepInterior} {
		for _, style := range []string{"modern", "classic", "minimal"} {
			registry.urls[fallbackKey(step, style)] = fmt.Sprintf(
				"https://assets.brandforge.dev/fallbacks/%s-%s.png", step, style)
		}
	}

	return registry
}

// LoadFile merges overrides from a JSON file after validating it against the
// registry schema.
func (r *FallbackRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fallback file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(fallbackSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to validate fallback file %s: %w", path, err)
	}

	if !result.Valid() {
		return fmt.Errorf("invalid fallback file %s: %s", path, result.Errors()[0].String())
	}

	var file fallbackFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode fallback file %s: %w", path, err)
	}

	for _, entry := range file.Fallbacks {
		r.urls[fallbackKey(models.Step(entry.Step), entry.Style)] = entry.URL
	}

	return nil
}

// Resolve returns the fallback URL for a step+style pair. An unknown pair
// resolves to a generic placeholder so degradation never fails.
func (r *FallbackRegistry) Resolve(step models.Step, style string) string {
	if url, ok := r.urls[fallbackKey(step, style)]; ok {
		return url
	}

	return "https://assets.brandforge.dev/fallbacks/default.png"
}
