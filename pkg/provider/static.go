package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// StaticClient produces deterministic asset URLs without calling an external
// service. It backs local development and is the default wiring until a real
// provider credential is configured.
type StaticClient struct {
	name    string
	baseURL string
	latency time.Duration
}

func NewStaticClient(name, baseURL string, latency time.Duration) *StaticClient {
	return &StaticClient{
		name:    name,
		baseURL: baseURL,
		latency: latency,
	}
}

func (c *StaticClient) Name() string {
	return c.name
}

func (c *StaticClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrProviderTimeout, c.name)
		case <-timer.C:
		}
	}

	hasher := fnv.New32a()
	hasher.Write([]byte(c.name + "/" + string(req.Step) + "/" + req.Style + "/" + req.Prompt))

	return &Result{
		URL:         fmt.Sprintf("%s/%s/%s/%s-%08x.png", c.baseURL, c.name, req.Step, req.Style, hasher.Sum32()),
		Provider:    c.name,
		Style:       req.Style,
		Prompt:      req.Prompt,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
