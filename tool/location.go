package tool

import (
	"context"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/internal/util"
	"github.com/flowprobe/flowprobe/transport"
)

// LocationSender sends location pin messages.
type LocationSender struct {
	client        *transport.Client
	phoneNumberID string
}

// NewLocationSender constructs the location sender.
func NewLocationSender(client *transport.Client, phoneNumberID string) *LocationSender {
	return &LocationSender{client: client, phoneNumberID: phoneNumberID}
}

// Name returns core.ToolLocation.
func (s *LocationSender) Name() core.ToolType { return core.ToolLocation }

// BuildEnvelope constructs a location message envelope.
func (s *LocationSender) BuildEnvelope(actor core.Actor, params map[string]any, replyTo string) (*Envelope, error) {
	lat, _ := floatParam(params, "latitude")
	lon, _ := floatParam(params, "longitude")

	msg := Message{
		From:      actor.Phone,
		ID:        util.NewMessageID(),
		Timestamp: time.Now().Unix(),
		Type:      "location",
		Location:  &Location{Latitude: lat, Longitude: lon},
	}
	if replyTo != "" {
		msg.Context = &ReplyContext{ID: replyTo}
	}

	return newEnvelope(actor, s.phoneNumberID, newEntryID(), msg), nil
}

// Deliver performs the two-phase send.
func (s *LocationSender) Deliver(ctx context.Context, env *Envelope) transport.DeliveryOutcome {
	return s.client.Deliver(ctx, env)
}

// ValidateParameters requires both coordinates inside their valid ranges.
func (s *LocationSender) ValidateParameters(params map[string]any) (bool, []string) {
	var errs []string

	lat, ok := floatParam(params, "latitude")
	if !ok {
		errs = append(errs, "latitude is required")
	} else if lat < -90 || lat > 90 {
		errs = append(errs, "latitude must be between -90 and 90")
	}

	lon, ok := floatParam(params, "longitude")
	if !ok {
		errs = append(errs, "longitude is required")
	} else if lon < -180 || lon > 180 {
		errs = append(errs, "longitude must be between -180 and 180")
	}
	return len(errs) == 0, errs
}

func floatParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
