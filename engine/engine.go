package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
)

// Engine drives one flow run across all its actors. Actors execute
// strictly one after another; there is no concurrency between them.
type Engine struct {
	runner     *Runner
	clock      core.Clock
	logger     *logging.FlowLogger
	actorDelay time.Duration
}

// NewEngine constructs an Engine around a configured Runner.
func NewEngine(runner *Runner, clock core.Clock, logger *logging.FlowLogger, actorDelay time.Duration) *Engine {
	return &Engine{
		runner:     runner,
		clock:      clock,
		logger:     logger,
		actorDelay: actorDelay,
	}
}

// Run validates the flow, then executes it for every actor in order. The
// only error it returns is a *core.ConfigurationError from validation or a
// criteria compile failure; individual actor failures are recorded in the
// RunResult and never abort the run.
func (e *Engine) Run(ctx context.Context, spec core.FlowSpec, actors []core.Actor) (core.RunResult, error) {
	spec = spec.Normalized()
	if err := spec.Validate(); err != nil {
		return core.RunResult{}, err
	}

	source := spec.SuccessCriteria
	if source == "" {
		source = DefaultSuccessCriteria
	}
	criteria, err := CompileCriteria(source)
	if err != nil {
		return core.RunResult{}, &core.ConfigurationError{
			Problems: []string{fmt.Sprintf("success criteria %q is invalid: %v", source, err)},
		}
	}

	logger := e.logger.WithFlow(spec.Description)
	multiActor := len(actors) > 1
	logger.Info("run.start", "actors", len(actors), "steps", len(spec.Steps), "criteria", criteria.String())

	result := core.RunResult{}
	for i, actor := range actors {
		actorResult := e.runner.Run(ctx, spec, actor, criteria, multiActor)
		result.Results = append(result.Results, actorResult)

		logger.Info("actor.done",
			"actor", actor.Name,
			"success", actorResult.Success,
			"success_rate", actorResult.SuccessRate,
		)

		if multiActor && i < len(actors)-1 {
			e.clock.Sleep(ctx, e.actorDelay)
		}
	}

	logger.Info("run.done",
		"actors", len(actors),
		"successful", result.SuccessfulActors(),
	)
	return result, nil
}
