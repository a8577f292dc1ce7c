package model

import (
	"context"
	"fmt"
)

// Info contains metadata about a Completer implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Completer is the minimal interface required by the classifier to drive
// generation. Implementations must be safe for sequential reuse; the
// engine never calls Complete concurrently.
type Completer interface {
	// Complete sends one system+user prompt pair and returns the model's
	// text output.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockCompleter is a lightweight in-memory Completer useful for tests. It
// returns canned responses keyed by exact prompt, a default response for
// unknown prompts, and can be forced into an error state to exercise
// fallback paths deterministically.
type MockCompleter struct {
	responses map[string]string
	fallback  string
	err       error
}

// NewMockCompleter constructs an empty MockCompleter.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{responses: map[string]string{}}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockCompleter) AddResponse(prompt, response string) { m.responses[prompt] = response }

// SetDefault sets the response returned for unregistered prompts.
func (m *MockCompleter) SetDefault(response string) { m.fallback = response }

// FailWith makes every Complete call return err until reset with nil.
func (m *MockCompleter) FailWith(err error) { m.err = err }

// Complete implements Completer.
func (m *MockCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	if m.fallback != "" {
		return m.fallback, nil
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}

// Info returns metadata describing the mock.
func (m *MockCompleter) Info() Info { return Info{Name: "mock", Provider: "mock"} }
