// Package fanout runs N provider generation branches in parallel and always
// settles exactly N ordered slots. A branch that times out or errors settles
// on deterministic fallback content instead of propagating the failure; the
// caller only sees an error when the request itself is malformed.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brandforge/brandforge/pkg/log"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/otelhelper"
	"github.com/brandforge/brandforge/pkg/provider"
)

// ErrInvalidRequest indicates the fan-out input itself was malformed. It is
// the only error Execute returns; provider failures are absorbed into
// fallback slots.
var ErrInvalidRequest = errors.New("invalid fan-out request")

// Slot is the settled outcome of one branch. Slots are returned in request
// order regardless of completion order.
type Slot struct {
	Request provider.Request
	Image   models.ImageResult
	Outcome models.EventStatus
	Reason  string
}

// Executor fans generation requests out across provider clients.
type Executor struct {
	providers *provider.Registry
	fallbacks *provider.FallbackRegistry
	tracer    trace.Tracer
	logger    *slog.Logger
}

func NewExecutor(providers *provider.Registry, fallbacks *provider.FallbackRegistry, tracer trace.Tracer) *Executor {
	return &Executor{
		providers: providers,
		fallbacks: fallbacks,
		tracer:    tracer,
		logger:    log.WithModule("fanout"),
	}
}

// Execute runs every request as its own branch and returns one slot per
// request, in order. Each branch gets perBranchTimeout; overallBudget bounds
// the whole call. When the budget lapses, still-running branches are
// cancelled and force-settled on fallback content.
func (e *Executor) Execute(ctx context.Context, requests []provider.Request, perBranchTimeout, overallBudget time.Duration) ([]Slot, error) {
	if err := validate(requests, perBranchTimeout, overallBudget); err != nil {
		return nil, err
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "fanout.execute",
		attribute.Int("fanout.branches", len(requests)),
	)
	defer span.End()

	budgetCtx, cancel := context.WithTimeout(ctx, overallBudget)
	defer cancel()

	slots := make([]Slot, len(requests))
	settled := make([]bool, len(requests))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for i, req := range requests {
		wg.Add(1)

		go func(index int, req provider.Request) {
			defer wg.Done()

			slot := e.runBranch(budgetCtx, req, perBranchTimeout)

			mu.Lock()
			defer mu.Unlock()

			if !settled[index] {
				slots[index] = slot
				settled[index] = true
			}
		}(i, req)
	}

	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-budgetCtx.Done():
		// Budget exhausted: cancel stragglers and settle what is left.
		cancel()

		mu.Lock()
		for i := range slots {
			if !settled[i] {
				slots[i] = e.fallbackSlot(requests[i], models.EventStatusTimeout, "overall budget exhausted")
				settled[i] = true
			}
		}
		mu.Unlock()

		e.logger.WarnContext(ctx, "Fan-out budget exhausted, force-settled remaining branches",
			"budget", overallBudget)
	}

	return slots, nil
}

// Degraded reports whether every slot settled on fallback content. An empty
// slot list is not degraded.
func Degraded(slots []Slot) bool {
	if len(slots) == 0 {
		return false
	}

	for _, slot := range slots {
		if !slot.Image.IsFallback {
			return false
		}
	}

	return true
}

func (e *Executor) runBranch(ctx context.Context, req provider.Request, timeout time.Duration) Slot {
	branchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, span := otelhelper.StartSpan(branchCtx, e.tracer, "fanout.branch",
		attribute.String(otelhelper.ProviderKey, req.Provider),
		attribute.String(otelhelper.StyleKey, req.Style),
	)
	defer span.End()

	client, err := e.providers.Get(req.Provider)
	if err != nil {
		otelhelper.SetError(span, err)

		return e.fallbackSlot(req, models.EventStatusError, err.Error())
	}

	start := time.Now()

	result, err := client.Generate(branchCtx, req)

	switch {
	case err == nil && branchCtx.Err() == nil:
		return Slot{
			Request: req,
			Outcome: models.EventStatusSuccess,
			Image: models.ImageResult{
				URL:         result.URL,
				Provider:    result.Provider,
				Style:       result.Style,
				Prompt:      result.Prompt,
				IsFallback:  false,
				GeneratedAt: result.GeneratedAt,
			},
		}
	case errors.Is(branchCtx.Err(), context.DeadlineExceeded) || errors.Is(err, provider.ErrProviderTimeout):
		otelhelper.SetError(span, provider.ErrProviderTimeout)
		e.logger.WarnContext(ctx, "Provider branch timed out, substituting fallback",
			"provider", req.Provider, "style", req.Style, "elapsed", time.Since(start))

		return e.fallbackSlot(req, models.EventStatusTimeout, "provider timed out")
	default:
		if err == nil {
			err = branchCtx.Err()
		}

		otelhelper.SetError(span, err)
		e.logger.WarnContext(ctx, "Provider branch failed, substituting fallback",
			"provider", req.Provider, "style", req.Style, "error", err)

		return e.fallbackSlot(req, models.EventStatusError, err.Error())
	}
}

func (e *Executor) fallbackSlot(req provider.Request, outcome models.EventStatus, reason string) Slot {
	return Slot{
		Request: req,
		Outcome: outcome,
		Reason:  reason,
		Image: models.ImageResult{
			URL:         e.fallbacks.Resolve(req.Step, req.Style),
			Provider:    req.Provider,
			Style:       req.Style,
			Prompt:      req.Prompt,
			IsFallback:  true,
			GeneratedAt: time.Now().UTC(),
		},
	}
}

func validate(requests []provider.Request, perBranchTimeout, overallBudget time.Duration) error {
	if len(requests) == 0 {
		return fmt.Errorf("%w: no requests", ErrInvalidRequest)
	}

	if perBranchTimeout <= 0 {
		return fmt.Errorf("%w: per-branch timeout must be positive", ErrInvalidRequest)
	}

	if overallBudget <= 0 {
		return fmt.Errorf("%w: overall budget must be positive", ErrInvalidRequest)
	}

	for i, req := range requests {
		if req.Provider == "" {
			return fmt.Errorf("%w: request %d has no provider", ErrInvalidRequest, i)
		}

		if !req.Step.Valid() {
			return fmt.Errorf("%w: request %d has unknown step %q", ErrInvalidRequest, i, req.Step)
		}

		if req.Style == "" {
			return fmt.Errorf("%w: request %d has no style", ErrInvalidRequest, i)
		}
	}

	return nil
}
