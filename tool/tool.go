package tool

import (
	"context"
	"fmt"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/transport"
)

// Sender is the contract every message tool fulfills. Implementations are
// stateless after construction and reused across steps and actors.
type Sender interface {
	// Name returns the tool identifier this sender handles.
	Name() core.ToolType

	// BuildEnvelope constructs the provider-shaped webhook envelope from
	// the classified parameters, the acting user's identity and the
	// inherited reply-to anchor (empty when not replying).
	BuildEnvelope(actor core.Actor, params map[string]any, replyTo string) (*Envelope, error)

	// Deliver performs the two-phase send for a built envelope.
	Deliver(ctx context.Context, env *Envelope) transport.DeliveryOutcome

	// ValidateParameters checks the sender's own parameter set without
	// touching the network.
	ValidateParameters(params map[string]any) (bool, []string)
}

// MediaRef describes an uploaded media file as the downstream providers
// expect it: the assigned id, the resolved MIME type and the content hash
// in the provider's encoding.
type MediaRef struct {
	ID       string
	MimeType string
	SHA256   string
}

// MediaSender extends Sender for tools that upload a file before building
// their message.
type MediaSender interface {
	Sender

	// Upload pushes the file to the tool's provider and returns the
	// media reference used in the envelope.
	Upload(ctx context.Context, path string) (MediaRef, error)
}

// Error codes used by ToolError.
const (
	CodeUnknownTool  = "UNKNOWN_TOOL"
	CodeValidation   = "VALIDATION_ERROR"
	CodeMediaMissing = "MEDIA_MISSING"
	CodeUploadFailed = "UPLOAD_FAILED"
	CodeDelivery     = "DELIVERY_FAILED"
)

// ToolError represents errors raised by the sender subsystem, with a
// machine-readable code for categorization. All ToolErrors are step-local:
// the executor converts them into failed step outcomes and the run
// continues.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
