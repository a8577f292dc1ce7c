// Package core provides the foundational domain types shared across the
// flowprobe engine. It defines:
//
//   - FlowSpec (an immutable scripted conversation test case)
//   - Actor (a simulated end user driving one run of the flow)
//   - ToolCall / ToolType (the classified action behind one step)
//   - StepOutcome, ActorResult and RunResult (write-once run aggregates)
//   - ExecutionContext (per-actor mutable reply-chain state)
//   - Clock (injectable time source so delays are testable)
//
// The package intentionally keeps implementation concerns (classification,
// transport, orchestration) out of scope so every other package can depend
// on it without cycles.
package core
