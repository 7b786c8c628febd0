package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/brandforge/brandforge/pkg/events"
	"github.com/brandforge/brandforge/pkg/fanout"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/otelhelper"
	"github.com/brandforge/brandforge/pkg/provider"
)

// Advance is the raw transition primitive: it moves the session from
// expectedStep to its successor without attaching step results. The
// conditional update guarantees exactly one concurrent caller wins; losers
// get ErrStaleStep.
func (c *Controller) Advance(ctx context.Context, sessionID string, expectedStep models.Step) (*models.Session, error) {
	session, err := c.loadActive(ctx, "Advance", sessionID)
	if err != nil {
		return nil, err
	}

	next, ok := expectedStep.Next()
	if !ok {
		return nil, NewError("Advance", sessionID,
			fmt.Errorf("%w: step %s has no successor", ErrValidation, expectedStep))
	}

	session.CurrentStep = next
	if next == models.StepCompleted {
		session.Status = models.SessionStatusCompleted
	}

	if err := c.save(ctx, "Advance", session, expectedStep); err != nil {
		return nil, err
	}

	return session, nil
}

// RunAnalysis executes the business analysis step and advances the session
// from created to analysis.
func (c *Controller) RunAnalysis(ctx context.Context, sessionID string) (*models.AnalysisResult, error) {
	const op = "RunAnalysis"

	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	if err := requireStep(op, session, models.StepCreated); err != nil {
		return nil, err
	}

	ctx, span := otelhelper.SessionSpan(ctx, c.tracer, "workflow.run_analysis", sessionID)
	defer span.End()

	start := time.Now()
	result := c.analyzer.Analyze(*session.BusinessInfo)
	latency := time.Since(start).Milliseconds()

	session.Analysis = result
	session.CurrentStep = models.StepAnalysis

	state := session.StepState(models.StepAnalysis)
	state.Attempts++
	state.LatencyMs = latency
	completeStepState(state, false)

	if err := c.save(ctx, op, session, models.StepCreated); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	c.recordEvent(ctx, sessionID, models.StepAnalysis, "analyzer", "market_analysis", latency, models.EventStatusSuccess, "")
	c.publishStepCompleted(ctx, sessionID, models.StepAnalysis, latency)

	return result, nil
}

// SuggestNames generates the first candidate batch and parks the naming step
// in awaiting-selection. Calling it again while awaiting returns the current
// batch unchanged.
func (c *Controller) SuggestNames(ctx context.Context, sessionID string) ([]models.NameSuggestion, error) {
	const op = "SuggestNames"

	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	if err := requireStep(op, session, models.StepAnalysis); err != nil {
		return nil, err
	}

	names := sessionNames(session)
	state := session.StepState(models.StepNaming)

	if state.Status == models.StepStatusAwaitingSelection && len(names.Suggestions) > 0 {
		return names.Suggestions, nil
	}

	start := time.Now()

	suggestions, err := c.generator.Suggest(*session.BusinessInfo, names.SeenSet())
	if err != nil {
		c.recordEvent(ctx, sessionID, models.StepNaming, "namer", "suggest", time.Since(start).Milliseconds(), errorStatus(err), err.Error())

		return nil, NewError(op, sessionID, err)
	}

	names.Suggestions = suggestions
	names.MarkSeen(suggestions)
	state.Attempts++
	state.LatencyMs = time.Since(start).Milliseconds()
	awaitSelection(state)

	if err := c.save(ctx, op, session, models.StepAnalysis); err != nil {
		return nil, err
	}

	c.recordEvent(ctx, sessionID, models.StepNaming, "namer", "suggest", state.LatencyMs, models.EventStatusSuccess, "")

	return suggestions, nil
}

// RegenerateNames replaces the candidate batch, consuming one regeneration.
// Names never repeat within a session; the fourth regeneration fails with
// the limit error.
func (c *Controller) RegenerateNames(ctx context.Context, sessionID string) ([]models.NameSuggestion, error) {
	const op = "RegenerateNames"

	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	if err := requireStep(op, session, models.StepAnalysis); err != nil {
		return nil, err
	}

	names := sessionNames(session)
	state := session.StepState(models.StepNaming)

	if state.Status != models.StepStatusAwaitingSelection {
		return nil, NewError(op, sessionID,
			fmt.Errorf("%w: no candidate batch to regenerate", ErrValidation))
	}

	start := time.Now()

	suggestions, err := c.generator.Regenerate(*session.BusinessInfo, names.SeenSet(), names.RegenerationCount)
	if err != nil {
		c.recordEvent(ctx, sessionID, models.StepNaming, "namer", "regenerate", time.Since(start).Milliseconds(), errorStatus(err), err.Error())

		return nil, NewError(op, sessionID, err)
	}

	names.Suggestions = suggestions
	names.MarkSeen(suggestions)
	names.RegenerationCount++
	state.LatencyMs = time.Since(start).Milliseconds()
	awaitSelection(state)

	if err := c.save(ctx, op, session, models.StepAnalysis); err != nil {
		return nil, err
	}

	c.recordEvent(ctx, sessionID, models.StepNaming, "namer", "regenerate", state.LatencyMs, models.EventStatusSuccess,
		fmt.Sprintf("regeneration %d of %d", names.RegenerationCount, models.MaxNameRegenerations))

	return suggestions, nil
}

// SelectName records the user's pick from the current batch and advances the
// session from analysis to naming.
func (c *Controller) SelectName(ctx context.Context, sessionID, name string) (*models.Session, error) {
	const op = "SelectName"

	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	if err := requireStep(op, session, models.StepAnalysis); err != nil {
		return nil, err
	}

	names := sessionNames(session)
	state := session.StepState(models.StepNaming)

	if state.Status != models.StepStatusAwaitingSelection {
		return nil, NewError(op, sessionID,
			fmt.Errorf("%w: naming step is not awaiting a selection", ErrValidation))
	}

	if !names.HasSuggestion(name) {
		return nil, NewError(op, sessionID,
			fmt.Errorf("%w: %q is not one of the current candidates", ErrValidation, name))
	}

	names.SelectedName = name
	session.CurrentStep = models.StepNaming
	completeStepState(state, false)

	if err := c.save(ctx, op, session, models.StepAnalysis); err != nil {
		return nil, err
	}

	c.recordEvent(ctx, sessionID, models.StepNaming, "namer", "select", 0, models.EventStatusSuccess, name)
	c.publishStepCompleted(ctx, sessionID, models.StepNaming, state.LatencyMs)

	return session, nil
}

// GenerateSignboards fans signboard generation out across the configured
// providers and parks the step in awaiting-selection.
func (c *Controller) GenerateSignboards(ctx context.Context, sessionID string) (*models.ImageSet, error) {
	return c.generateImages(ctx, "GenerateSignboards", sessionID, models.StepSignboard, false)
}

// SelectSignboard records the signboard pick and advances the session from
// naming to signboard.
func (c *Controller) SelectSignboard(ctx context.Context, sessionID, url string) (*models.Session, error) {
	return c.selectImage(ctx, "SelectSignboard", sessionID, models.StepSignboard, url)
}

// GenerateInteriors fans interior generation out across the configured
// providers and parks the step in awaiting-selection.
func (c *Controller) GenerateInteriors(ctx context.Context, sessionID string) (*models.ImageSet, error) {
	return c.generateImages(ctx, "GenerateInteriors", sessionID, models.StepInterior, false)
}

// SelectInterior records the interior pick and advances the session from
// signboard to interior.
func (c *Controller) SelectInterior(ctx context.Context, sessionID, url string) (*models.Session, error) {
	return c.selectImage(ctx, "SelectInterior", sessionID, models.StepInterior, url)
}

// BuildReport assembles the final deliverable and completes the session.
func (c *Controller) BuildReport(ctx context.Context, sessionID string) (*models.Report, error) {
	const op = "BuildReport"

	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	if err := requireStep(op, session, models.StepInterior); err != nil {
		return nil, err
	}

	start := time.Now()

	result, err := c.builder.Build(session)
	if err != nil {
		return nil, NewError(op, sessionID, fmt.Errorf("%w: %s", ErrValidation, err))
	}

	session.Report = result
	session.CurrentStep = models.StepCompleted
	session.Status = models.SessionStatusCompleted

	state := session.StepState(models.StepReport)
	state.Attempts++
	state.LatencyMs = time.Since(start).Milliseconds()
	completeStepState(state, false)

	if err := c.save(ctx, op, session, models.StepInterior); err != nil {
		return nil, err
	}

	c.recordEvent(ctx, sessionID, models.StepReport, "reporter", "build_report", state.LatencyMs, models.EventStatusSuccess, "")
	c.publish(ctx, sessionID, events.SessionCompleted{
		BaseEvent:    c.baseEvent(events.SessionCompletedEvent, sessionID),
		BusinessName: result.BusinessName,
		Duration:     time.Since(session.CreatedAt),
	})

	c.logger.InfoContext(ctx, "Session completed",
		"session_id", sessionID, "business_name", result.BusinessName)

	return result, nil
}

// Restart re-runs a failing image step. Once the attempt allowance is used
// up it stops retrying and force-settles the step on all-fallback content,
// leaving the session advanceable in degraded mode.
func (c *Controller) Restart(ctx context.Context, sessionID string, step models.Step) error {
	const op = "Restart"

	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return err
	}

	if step != models.StepSignboard && step != models.StepInterior {
		return NewError(op, sessionID,
			fmt.Errorf("%w: step %s is not restartable", ErrValidation, step))
	}

	if session.StepState(step).Attempts >= c.config.MaxStepAttempts {
		return c.forceDegrade(ctx, session, step)
	}

	_, err = c.generateImages(ctx, op, sessionID, step, true)

	return err
}

// generateImages runs the provider fan-out for an image step. force re-runs
// the step even when a batch is already awaiting selection.
func (c *Controller) generateImages(ctx context.Context, op, sessionID string, step models.Step, force bool) (*models.ImageSet, error) {
	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	fromStep := imageStepOrigin(step)
	if err := requireStep(op, session, fromStep); err != nil {
		return nil, err
	}

	set := sessionImageSet(session, step)
	state := session.StepState(step)

	if !force && state.Status == models.StepStatusAwaitingSelection && len(set.Images) > 0 {
		return set, nil
	}

	ctx, span := otelhelper.SessionSpan(ctx, c.tracer, "workflow.generate_images", sessionID,
		attribute.String(otelhelper.StepKey, string(step)))
	defer span.End()

	state.Status = models.StepStatusRunning
	state.Attempts++

	c.publish(ctx, sessionID, events.StepStarted{
		BaseEvent: c.baseEvent(events.StepStartedEvent, sessionID),
		Step:      step,
	})

	start := time.Now()

	slots, err := c.executor.Execute(ctx, c.buildRequests(session, step),
		c.config.PerBranchTimeout, c.config.OverallBudget)
	if err != nil {
		otelhelper.SetError(span, err)
		// A rejected fan-out request means broken provider configuration;
		// the step can never run, so the session is unrecoverable.
		c.markFailed(ctx, session, step, err)

		return nil, NewError(op, sessionID, fmt.Errorf("%w: %s", ErrValidation, err))
	}

	images := make([]models.ImageResult, len(slots))
	for i, slot := range slots {
		images[i] = slot.Image
	}

	set.Images = images
	set.SelectedURL = ""

	degraded := fanout.Degraded(slots)
	state.LatencyMs = time.Since(start).Milliseconds()
	state.IsFallback = degraded
	awaitSelection(state)

	if err := c.save(ctx, op, session, fromStep); err != nil {
		return nil, err
	}

	for _, slot := range slots {
		c.recordEvent(ctx, sessionID, step, string(step), slot.Request.Provider,
			state.LatencyMs, slot.Outcome, slot.Reason)
	}

	if degraded {
		c.publishDegraded(ctx, sessionID, step)
	}

	return set, nil
}

func (c *Controller) selectImage(ctx context.Context, op, sessionID string, step models.Step, url string) (*models.Session, error) {
	session, err := c.loadActive(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	fromStep := imageStepOrigin(step)
	if err := requireStep(op, session, fromStep); err != nil {
		return nil, err
	}

	set := sessionImageSet(session, step)
	state := session.StepState(step)

	if state.Status != models.StepStatusAwaitingSelection {
		return nil, NewError(op, sessionID,
			fmt.Errorf("%w: %s step is not awaiting a selection", ErrValidation, step))
	}

	if !set.HasImage(url) {
		return nil, NewError(op, sessionID,
			fmt.Errorf("%w: %q is not one of the generated images", ErrValidation, url))
	}

	set.SelectedURL = url
	session.CurrentStep = step
	completeStepState(state, state.IsFallback)

	if err := c.save(ctx, op, session, fromStep); err != nil {
		return nil, err
	}

	c.recordEvent(ctx, sessionID, step, string(step), "select", 0, models.EventStatusSuccess, url)

	if state.Status == models.StepStatusDegraded {
		c.publishDegraded(ctx, sessionID, step)
	} else {
		c.publishStepCompleted(ctx, sessionID, step, state.LatencyMs)
	}

	return session, nil
}

// forceDegrade settles an image step on deterministic fallback content after
// the retry allowance is exhausted.
func (c *Controller) forceDegrade(ctx context.Context, session *models.Session, step models.Step) error {
	const op = "forceDegrade"

	fromStep := imageStepOrigin(step)
	set := sessionImageSet(session, step)
	state := session.StepState(step)

	requests := c.buildRequests(session, step)
	images := make([]models.ImageResult, len(requests))

	for i, req := range requests {
		images[i] = models.ImageResult{
			URL:         c.fallbacks.Resolve(step, req.Style),
			Provider:    req.Provider,
			Style:       req.Style,
			Prompt:      req.Prompt,
			IsFallback:  true,
			GeneratedAt: time.Now().UTC(),
		}
	}

	set.Images = images
	set.SelectedURL = ""
	state.IsFallback = true
	awaitSelection(state)

	if err := c.save(ctx, op, session, fromStep); err != nil {
		return err
	}

	c.recordEvent(ctx, session.ID, step, string(step), "force_degrade", 0, models.EventStatusFallback,
		fmt.Sprintf("attempt allowance exhausted after %d attempts", state.Attempts))
	c.publishDegraded(ctx, session.ID, step)

	c.logger.WarnContext(ctx, "Step force-settled on fallback content",
		"session_id", session.ID, "step", step, "attempts", state.Attempts)

	return nil
}

func (c *Controller) buildRequests(session *models.Session, step models.Step) []provider.Request {
	subject := "the business"
	if session.Names != nil && session.Names.SelectedName != "" {
		subject = session.Names.SelectedName
	}

	kind := "signboard"
	if step == models.StepInterior {
		kind = "interior"
	}

	requests := make([]provider.Request, len(c.config.Providers))
	for i, name := range c.config.Providers {
		style := c.config.Styles[i%len(c.config.Styles)]
		requests[i] = provider.Request{
			Provider: name,
			Step:     step,
			Style:    style,
			Prompt: fmt.Sprintf("%s %s design for %s, a %s business in %s",
				style, kind, subject, session.BusinessInfo.Industry, session.BusinessInfo.Region),
		}
	}

	return requests
}

func (c *Controller) publishStepCompleted(ctx context.Context, sessionID string, step models.Step, latencyMs int64) {
	c.publish(ctx, sessionID, events.StepCompleted{
		BaseEvent:  c.baseEvent(events.StepCompletedEvent, sessionID),
		Step:       step,
		DurationMs: latencyMs,
	})
}

func (c *Controller) publishDegraded(ctx context.Context, sessionID string, step models.Step) {
	c.publish(ctx, sessionID, events.StepDegraded{
		BaseEvent: c.baseEvent(events.StepDegradedEvent, sessionID),
		Step:      step,
		Providers: c.config.Providers,
	})
}

func requireStep(op string, session *models.Session, expected models.Step) error {
	if session.CurrentStep != expected {
		return NewError(op, session.ID,
			fmt.Errorf("%w: session is at %s, operation expects %s",
				ErrStaleStep, session.CurrentStep, expected))
	}

	return nil
}

func sessionNames(session *models.Session) *models.BusinessNames {
	if session.Names == nil {
		session.Names = &models.BusinessNames{}
	}

	return session.Names
}

func sessionImageSet(session *models.Session, step models.Step) *models.ImageSet {
	if step == models.StepInterior {
		if session.Interiors == nil {
			session.Interiors = &models.ImageSet{}
		}

		return session.Interiors
	}

	if session.Signboards == nil {
		session.Signboards = &models.ImageSet{}
	}

	return session.Signboards
}

// imageStepOrigin is the step a session must be at before running an image
// step: signboards follow naming, interiors follow signboards.
func imageStepOrigin(step models.Step) models.Step {
	if step == models.StepInterior {
		return models.StepSignboard
	}

	return models.StepNaming
}

func awaitSelection(state *models.StepState) {
	now := time.Now().UTC()
	state.Status = models.StepStatusAwaitingSelection
	state.AwaitingSince = &now
}

func completeStepState(state *models.StepState, degraded bool) {
	now := time.Now().UTC()

	if degraded {
		state.Status = models.StepStatusDegraded
	} else {
		state.Status = models.StepStatusCompleted
	}

	state.AwaitingSince = nil
	state.CompletedAt = &now
}
