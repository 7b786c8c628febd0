// Package report assembles the final deliverable from a session's selected
// results. Rendering the payload to PDF or HTML is a downstream concern.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/brandforge/brandforge/pkg/models"
)

// ErrIncompleteSession indicates required step results are missing.
var ErrIncompleteSession = errors.New("session results incomplete")

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build aggregates the session's selections into a report. Every prior step
// must have settled: an analysis, a selected name and selected images.
func (b *Builder) Build(session *models.Session) (*models.Report, error) {
	if session.Analysis == nil {
		return nil, fmt.Errorf("%w: no analysis result", ErrIncompleteSession)
	}

	if session.Names == nil || session.Names.SelectedName == "" {
		return nil, fmt.Errorf("%w: no business name selected", ErrIncompleteSession)
	}

	if session.Signboards == nil || session.Signboards.SelectedURL == "" {
		return nil, fmt.Errorf("%w: no signboard selected", ErrIncompleteSession)
	}

	if session.Interiors == nil || session.Interiors.SelectedURL == "" {
		return nil, fmt.Errorf("%w: no interior selected", ErrIncompleteSession)
	}

	summary := fmt.Sprintf(
		"Branding package for '%s': %s Signboard and interior concepts are attached.",
		session.Names.SelectedName, session.Analysis.Summary)

	return &models.Report{
		BusinessName: session.Names.SelectedName,
		Summary:      summary,
		Analysis:     session.Analysis,
		SignboardURL: session.Signboards.SelectedURL,
		InteriorURL:  session.Interiors.SelectedURL,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
