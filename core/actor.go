package core

// Actor is one simulated end user (an employee in the original data set).
// Actors are loaded once at run start and never mutated during a run.
type Actor struct {
	// Phone is the normalized phone number (digits only, 10-15 chars).
	Phone string `json:"phone"`
	// Name is the display name used in the message envelope contact block.
	Name string `json:"name"`
	// Raw carries the remaining source-row attributes untouched, for
	// reporting. May be nil.
	Raw map[string]string `json:"raw,omitempty"`
}

// ExecutionContext is the per-actor mutable state threaded across the
// sequential steps of a single run. It is owned exclusively by one runner
// invocation and must never be shared across actors.
type ExecutionContext struct {
	// LastMessageID anchors the next outbound message's reply context.
	// Empty until the first step yields a response carrying an id.
	LastMessageID string
}

// Observe records the message id of an inbound response, if present.
// An empty id leaves the reply anchor unchanged rather than resetting it.
func (c *ExecutionContext) Observe(messageID string) {
	if messageID != "" {
		c.LastMessageID = messageID
	}
}
