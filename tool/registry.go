package tool

import (
	"fmt"
	"sync"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/transport"
)

// Factory creates a Sender instance for one registration.
type Factory func() Sender

// Registry maps tool identifiers to sender factories. It is pure lookup:
// no business logic lives here. The built-in senders are registered by
// NewRegistry; additional tools can be added at startup via Register.
type Registry struct {
	mu        sync.RWMutex
	factories map[core.ToolType]Factory
}

// NewRegistry constructs a registry pre-populated with the four built-in
// senders, all sharing one transport client.
func NewRegistry(client *transport.Client, phoneNumberID string) *Registry {
	r := &Registry{factories: map[core.ToolType]Factory{}}
	r.Register(core.ToolText, func() Sender { return NewTextSender(client, phoneNumberID) })
	r.Register(core.ToolLocation, func() Sender { return NewLocationSender(client, phoneNumberID) })
	r.Register(core.ToolImage, func() Sender { return NewImageSender(client, phoneNumberID) })
	r.Register(core.ToolVoice, func() Sender { return NewVoiceSender(client, phoneNumberID) })
	return r
}

// Register adds or replaces a tool factory.
func (r *Registry) Register(id core.ToolType, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// Unregister removes a tool factory.
func (r *Registry) Unregister(id core.ToolType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, id)
}

// Create instantiates the sender for a tool id. Unknown ids yield a
// *ToolError with code UNKNOWN_TOOL.
func (r *Registry) Create(id core.ToolType) (Sender, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, NewToolError(string(id), fmt.Sprintf("unknown tool type: %s", id), CodeUnknownTool)
	}
	return factory(), nil
}

// IsAvailable reports whether a tool id is registered.
func (r *Registry) IsAvailable(id core.ToolType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// Available lists the registered tool ids with human descriptions.
func (r *Registry) Available() map[core.ToolType]string {
	descriptions := map[core.ToolType]string{
		core.ToolText:     "Send text messages",
		core.ToolLocation: "Send location coordinates",
		core.ToolImage:    "Send image files",
		core.ToolVoice:    "Send voice recordings",
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[core.ToolType]string{}
	for id := range r.factories {
		desc, ok := descriptions[id]
		if !ok {
			desc = string(id)
		}
		out[id] = desc
	}
	return out
}

// ValidateParameters runs a tool's own pre-flight parameter validation.
func (r *Registry) ValidateParameters(id core.ToolType, params map[string]any) (bool, []string) {
	sender, err := r.Create(id)
	if err != nil {
		return false, []string{fmt.Sprintf("invalid tool type: %s", id)}
	}
	return sender.ValidateParameters(params)
}
