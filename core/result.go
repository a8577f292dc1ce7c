package core

import "time"

// ToolType identifies the concrete action a step resolves to.
type ToolType string

// Built-in tool types. ToolUnknown marks steps the classifier could not map.
const (
	ToolText     ToolType = "send_text"
	ToolLocation ToolType = "send_location"
	ToolImage    ToolType = "send_image"
	ToolVoice    ToolType = "send_voice"
	ToolUnknown  ToolType = "unknown"
)

// IsMedia reports whether the tool carries an uploaded file.
func (t ToolType) IsMedia() bool { return t == ToolImage || t == ToolVoice }

// ToolCall is the structured classification of one step: which tool to run
// and with which parameters. Produced fresh per step and never mutated.
type ToolCall struct {
	Tool       ToolType       `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// StringParam returns the named parameter as a string, or "" when absent or
// of another type.
func (c ToolCall) StringParam(key string) string {
	if s, ok := c.Parameters[key].(string); ok {
		return s
	}
	return ""
}

// FloatParam returns the named parameter as a float64 with a found flag.
// JSON-decoded numbers and native ints are both accepted.
func (c ToolCall) FloatParam(key string) (float64, bool) {
	switch v := c.Parameters[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// StepOutcome records what happened to one step. Outcomes are appended to
// an ordered, append-only log for the actor's run.
type StepOutcome struct {
	StepIndex int            `json:"step_index"`
	StepText  string         `json:"step"`
	Tool      ToolType       `json:"tool,omitempty"`
	Success   bool           `json:"success"`
	Response  map[string]any `json:"response,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ActorResult aggregates one actor's run. Created once after all the
// actor's steps complete (or a fatal error aborted the actor).
type ActorResult struct {
	Actor       Actor         `json:"actor"`
	Success     bool          `json:"success"`
	SuccessRate float64       `json:"success_rate"`
	Steps       []StepOutcome `json:"executed_steps"`
	Error       string        `json:"error,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// RunResult is the final artifact of an engine run: one ActorResult per
// actor, in actor-list order.
type RunResult struct {
	Results []ActorResult `json:"results"`
}

// SuccessfulActors counts actors whose run met the flow's success criteria.
func (r RunResult) SuccessfulActors() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}
