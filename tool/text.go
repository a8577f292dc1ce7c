package tool

import (
	"context"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/internal/util"
	"github.com/flowprobe/flowprobe/transport"
)

// maxTextBody is the provider ceiling for text message bodies.
const maxTextBody = 4096

// TextSender sends plain text messages.
type TextSender struct {
	client        *transport.Client
	phoneNumberID string
}

// NewTextSender constructs the text sender.
func NewTextSender(client *transport.Client, phoneNumberID string) *TextSender {
	return &TextSender{client: client, phoneNumberID: phoneNumberID}
}

// Name returns core.ToolText.
func (s *TextSender) Name() core.ToolType { return core.ToolText }

// BuildEnvelope constructs a text message envelope. The reply context
// carries only the prior message id.
func (s *TextSender) BuildEnvelope(actor core.Actor, params map[string]any, replyTo string) (*Envelope, error) {
	body, _ := params["body"].(string)

	msg := Message{
		From:      actor.Phone,
		ID:        util.NewMessageID(),
		Timestamp: time.Now().Unix(),
		Type:      "text",
		Text:      &TextBody{Body: body},
	}
	if replyTo != "" {
		msg.Context = &ReplyContext{ID: replyTo}
	}

	return newEnvelope(actor, s.phoneNumberID, newEntryID(), msg), nil
}

// Deliver performs the two-phase send.
func (s *TextSender) Deliver(ctx context.Context, env *Envelope) transport.DeliveryOutcome {
	return s.client.Deliver(ctx, env)
}

// ValidateParameters requires a non-empty body within the length ceiling.
func (s *TextSender) ValidateParameters(params map[string]any) (bool, []string) {
	var errs []string

	body, ok := params["body"].(string)
	if !ok || body == "" {
		errs = append(errs, "message body is required")
	}
	if ok && len(body) > maxTextBody {
		errs = append(errs, "message body too long (max 4096 characters)")
	}
	return len(errs) == 0, errs
}
