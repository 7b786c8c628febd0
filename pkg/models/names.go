package models

import "strings"

// NameSuggestion is one scored business-name candidate. Instances are
// immutable once created; regeneration supersedes candidates instead of
// mutating them.
type NameSuggestion struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	PronunciationScore float64 `json:"pronunciation_score"`
	SearchScore        float64 `json:"search_score"`
	OverallScore       float64 `json:"overall_score"`
}

// MaxNameRegenerations caps how often one session may regenerate candidates.
const MaxNameRegenerations = 3

// BusinessNames holds the naming step's state: the current candidate set,
// the user's selection, and the cumulative seen-name set that guarantees a
// name is never surfaced twice within one session.
type BusinessNames struct {
	Suggestions       []NameSuggestion `json:"suggestions"`
	SelectedName      string           `json:"selected_name,omitempty"`
	RegenerationCount int              `json:"regeneration_count"`
	SeenNames         []string         `json:"seen_names,omitempty"`
}

func (n *BusinessNames) CanRegenerate() bool {
	return n.RegenerationCount < MaxNameRegenerations
}

// Seen reports whether a name was already surfaced in this session.
// Comparison is case-insensitive.
func (n *BusinessNames) Seen(name string) bool {
	lower := strings.ToLower(name)
	for _, seen := range n.SeenNames {
		if strings.ToLower(seen) == lower {
			return true
		}
	}

	return false
}

// MarkSeen records the given suggestions in the cumulative seen-name set.
func (n *BusinessNames) MarkSeen(suggestions []NameSuggestion) {
	for _, s := range suggestions {
		if !n.Seen(s.Name) {
			n.SeenNames = append(n.SeenNames, s.Name)
		}
	}
}

// SeenSet returns the seen names as a lookup set keyed by lowercase name.
func (n *BusinessNames) SeenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(n.SeenNames))
	for _, name := range n.SeenNames {
		set[strings.ToLower(name)] = struct{}{}
	}

	return set
}

// HasSuggestion reports whether name is in the current candidate set.
func (n *BusinessNames) HasSuggestion(name string) bool {
	for _, s := range n.Suggestions {
		if s.Name == name {
			return true
		}
	}

	return false
}
