// Package provider defines the image generation client contract and the
// registry of available providers. Providers are interchangeable backends
// (dalle, sdxl, gemini); the orchestration core never depends on a concrete
// one.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandforge/brandforge/pkg/models"
)

var (
	// ErrProviderTimeout indicates a branch exceeded its deadline.
	ErrProviderTimeout = errors.New("provider timed out")

	// ErrProviderFailure indicates a provider returned an error response.
	ErrProviderFailure = errors.New("provider failed")

	// ErrProviderNotFound indicates no client is registered for the name.
	ErrProviderNotFound = errors.New("provider not found")
)

// Request describes one generation branch.
type Request struct {
	Provider string         `json:"provider" validate:"required"`
	Step     models.Step    `json:"step"     validate:"required"`
	Style    string         `json:"style"    validate:"required,oneof=modern classic minimal"`
	Prompt   string         `json:"prompt"   validate:"required"`
	Params   map[string]any `json:"params,omitempty"`
}

// Result is a successful provider response.
type Result struct {
	URL         string    `json:"url"`
	Provider    string    `json:"provider"`
	Style       string    `json:"style"`
	Prompt      string    `json:"prompt"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Client generates one image per call. Implementations must honor the
// context deadline and return promptly on cancellation.
type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Registry holds the configured provider clients by name.
type Registry struct {
	clients map[string]Client
}

func NewRegistry(clients ...Client) *Registry {
	registry := &Registry{clients: make(map[string]Client)}
	for _, client := range clients {
		registry.clients[client.Name()] = client
	}

	return registry
}

func (r *Registry) Register(client Client) {
	r.clients[client.Name()] = client
}

func (r *Registry) Get(name string) (Client, error) {
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}

	return client, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}

	return names
}
