package models

import "time"

// ImageResult is one generated artifact from an image provider branch. A
// branch that timed out or errored yields a deterministic fallback artifact
// with IsFallback set; a slot is never left empty.
type ImageResult struct {
	URL         string    `json:"url"`
	Provider    string    `json:"provider"`
	Style       string    `json:"style"`
	Prompt      string    `json:"prompt"`
	IsFallback  bool      `json:"is_fallback"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ImageSet holds the artifacts of one image generation step together with
// the user's selection.
type ImageSet struct {
	Images      []ImageResult `json:"images"`
	SelectedURL string        `json:"selected_url,omitempty"`
}

// AllFallback reports whether every image in the set is a fallback artifact,
// which marks the step degraded.
func (s *ImageSet) AllFallback() bool {
	if len(s.Images) == 0 {
		return false
	}

	for _, img := range s.Images {
		if !img.IsFallback {
			return false
		}
	}

	return true
}

// HasImage reports whether url belongs to one of the set's images.
func (s *ImageSet) HasImage(url string) bool {
	for _, img := range s.Images {
		if img.URL == url {
			return true
		}
	}

	return false
}
