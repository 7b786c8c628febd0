package web

import "github.com/brandforge/brandforge/pkg/models"

// CreateSessionRequest is the intake payload for a new branding session.
// Vocabulary validation happens in the workflow layer; the handler only
// checks shape.
type CreateSessionRequest struct {
	Industry    string `json:"industry"    validate:"required"`
	Region      string `json:"region"      validate:"required"`
	Size        string `json:"size"        validate:"required"`
	Description string `json:"description,omitempty"`
}

func (r CreateSessionRequest) BusinessInfo() models.BusinessInfo {
	return models.BusinessInfo{
		Industry:    r.Industry,
		Region:      r.Region,
		Size:        r.Size,
		Description: r.Description,
	}
}

// SelectNameRequest picks one candidate from the current batch.
type SelectNameRequest struct {
	Name string `json:"name" validate:"required"`
}

// SelectImageRequest picks one generated image by URL.
type SelectImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}
