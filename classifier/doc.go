// Package classifier turns natural-language step descriptions into
// structured tool calls. Two implementations of the Classifier interface
// exist:
//
//   - RuleBased applies deterministic keyword precedence rules and regex
//     extraction. It is total: unparseable input yields ToolUnknown.
//   - ModelBacked delegates to a model.Completer and falls back to the
//     rule-based classifier on any model failure or unparseable output.
//
// The variant is chosen at construction time (New) based on whether a
// Completer is available, keeping call sites free of runtime branching.
// Both variants also estimate the actor headcount a flow description
// implies (EstimateActorCount), with the same model-primary /
// rules-fallback split.
package classifier
