package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/response"
	"github.com/flowprobe/flowprobe/tool"
)

// Runner executes one actor's full flow: the multi-actor session reset,
// every step in order with the inter-step delay, and the success scoring.
// The ExecutionContext it creates is owned exclusively by one Run call
// and never shared across actors.
type Runner struct {
	executor  *StepExecutor
	registry  *tool.Registry
	reader    *response.Reader
	clock     core.Clock
	logger    *logging.FlowLogger
	stepDelay time.Duration
	respDelay time.Duration
}

// NewRunner constructs a Runner sharing the executor's collaborators.
func NewRunner(
	executor *StepExecutor,
	registry *tool.Registry,
	reader *response.Reader,
	clock core.Clock,
	logger *logging.FlowLogger,
	stepDelay, respDelay time.Duration,
) *Runner {
	return &Runner{
		executor:  executor,
		registry:  registry,
		reader:    reader,
		clock:     clock,
		logger:    logger,
		stepDelay: stepDelay,
		respDelay: respDelay,
	}
}

// Run executes the flow for one actor. It never returns an error: any
// unexpected failure is converted into a failed ActorResult carrying the
// steps recorded so far.
func (r *Runner) Run(
	ctx context.Context,
	spec core.FlowSpec,
	actor core.Actor,
	criteria *Criteria,
	multiActor bool,
) (result core.ActorResult) {
	logger := r.logger.WithActor(actor.Name, actor.Phone)

	var steps []core.StepOutcome

	// Containment of last resort; the executor already absorbs
	// step-local failures.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("actor.run_panicked", "panic", fmt.Sprint(rec))
			result = core.ActorResult{
				Actor:     actor,
				Success:   false,
				Steps:     steps,
				Error:     fmt.Sprint(rec),
				Timestamp: r.clock.Now(),
			}
		}
	}()

	if actor.Phone == "" {
		return core.ActorResult{
			Actor:     actor,
			Success:   false,
			Error:     fmt.Sprintf("actor phone number is required for %s", actor.Name),
			Timestamp: r.clock.Now(),
		}
	}

	execCtx := &core.ExecutionContext{}

	if multiActor {
		r.sendStopMessage(ctx, actor, execCtx, logger)
	}

	for i, step := range spec.Steps {
		outcome := r.executor.Execute(ctx, i, step, actor, execCtx)
		steps = append(steps, outcome)
		r.clock.Sleep(ctx, r.stepDelay)
	}

	successful := 0
	for _, s := range steps {
		if s.Success {
			successful++
		}
	}

	rate := 0.0
	if len(steps) > 0 {
		rate = float64(successful) / float64(len(steps)) * 100
	}

	return core.ActorResult{
		Actor:       actor,
		Success:     criteria.Evaluate(rate, successful, len(steps)),
		SuccessRate: rate,
		Steps:       steps,
		Timestamp:   r.clock.Now(),
	}
}

// sendStopMessage resets any prior session state for the actor's phone
// number before the flow starts and seeds the reply anchor from the
// response. Failure here is logged but never fatal.
func (r *Runner) sendStopMessage(
	ctx context.Context,
	actor core.Actor,
	execCtx *core.ExecutionContext,
	logger *logging.FlowLogger,
) {
	sender, err := r.registry.Create(core.ToolText)
	if err != nil {
		logger.Warn("stop_message.failed", "error", err.Error())
		return
	}

	env, err := sender.BuildEnvelope(actor, map[string]any{"body": "Stop"}, "")
	if err != nil {
		logger.Warn("stop_message.failed", "error", err.Error())
		return
	}

	outcome := sender.Deliver(ctx, env)
	if outcome.StatusCode != http.StatusOK {
		logger.Warn("stop_message.failed", "status", outcome.StatusCode)
		return
	}

	r.clock.Sleep(ctx, r.respDelay)
	if msg := r.reader.FetchLatest(ctx); msg != nil {
		execCtx.Observe(msg.ID())
	}
}
