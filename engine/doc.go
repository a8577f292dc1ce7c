// Package engine orchestrates flow runs. It is layered the way control
// flows:
//
//   - StepExecutor runs one step: classify, resolve a sender, dispatch,
//     read the response. A failing step never aborts the run.
//   - Runner sequences all steps for one actor, threading the reply-chain
//     context, and scores the actor against the flow's success criteria.
//   - Engine iterates actors strictly sequentially, inserting the
//     configured inter-actor delay, and aggregates the RunResult.
//
// Everything below the Engine boundary is contained: step-local errors
// become failed StepOutcomes, actor-local errors become failed
// ActorResults, and the engine itself only errs on upfront configuration
// validation. Execution is deliberately serial end to end because step
// N's response anchors step N+1's reply context and the companion
// latest-message endpoint is a single mutable slot.
package engine
