// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug
// any structured logger. It also offers a richer FlowLogger with contextual
// helpers (flow, actor) and domain specific logging helpers for steps,
// tools and transport.
//
// Implementations provided:
//   - SlogAdapter bridging *slog.Logger
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - FlowLogger adding cloneable context attributes
package logging
