package tool

import (
	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/internal/util"
)

// Provider compatibility values the receiving system expects verbatim in
// the reply context of media messages. They mirror real webhook traffic
// and carry no logic.
const (
	mediaReplyFrom    = "917003235202"
	mediaReplyEntryID = "476267595577986"
)

// Envelope is the top-level webhook payload shape for every sender type.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one webhook entry; exactly one is sent per message.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries the message batch under the "messages" field.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds the messaging metadata, contact block and message list.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

// Metadata identifies the business phone number the message targets.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's contact block.
type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

// Profile carries the sender's display name.
type Profile struct {
	Name string `json:"name"`
}

// Message is the typed message union. Exactly one payload field is set
// according to Type. Timestamp is numeric normally but the provider emits
// it as a string on media replies; the any type preserves that quirk.
type Message struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp any           `json:"timestamp"`
	Type      string        `json:"type"`
	Text      *TextBody     `json:"text,omitempty"`
	Location  *Location     `json:"location,omitempty"`
	Image     *Media        `json:"image,omitempty"`
	Audio     *Media        `json:"audio,omitempty"`
	Context   *ReplyContext `json:"context,omitempty"`
}

// TextBody is the text message payload.
type TextBody struct {
	Body string `json:"body"`
}

// Location is the location message payload.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// Media is the payload for image and audio messages. Voice marks audio as
// a voice note.
type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Caption  string `json:"caption,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
}

// ReplyContext threads the conversation: ID references the prior inbound
// message. From is only set on media replies (provider quirk).
type ReplyContext struct {
	From string `json:"from,omitempty"`
	ID   string `json:"id"`
}

// newEnvelope wraps a typed message into the full webhook envelope for the
// given actor. entryID lets media replies pin the provider's literal id.
func newEnvelope(actor core.Actor, phoneNumberID, entryID string, msg Message) *Envelope {
	return &Envelope{
		Object: "whatsapp_business_account",
		Entry: []Entry{{
			ID: entryID,
			Changes: []Change{{
				Field: "messages",
				Value: Value{
					MessagingProduct: "whatsapp",
					Metadata: Metadata{
						DisplayPhoneNumber: actor.Phone,
						PhoneNumberID:      phoneNumberID,
					},
					Contacts: []Contact{{
						Profile: Profile{Name: actor.Name},
						WaID:    actor.Phone,
					}},
					Messages: []Message{msg},
				},
			}},
		}},
	}
}

// MessageID returns the synthetic id of the envelope's message, or "" for
// a malformed envelope.
func (e *Envelope) MessageID() string {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 || len(e.Entry[0].Changes[0].Value.Messages) == 0 {
		return ""
	}
	return e.Entry[0].Changes[0].Value.Messages[0].ID
}

// ContextID returns the reply-to id carried by the envelope's message, or
// "" when the message is not a reply.
func (e *Envelope) ContextID() string {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 || len(e.Entry[0].Changes[0].Value.Messages) == 0 {
		return ""
	}
	msgCtx := e.Entry[0].Changes[0].Value.Messages[0].Context
	if msgCtx == nil {
		return ""
	}
	return msgCtx.ID
}

func newEntryID() string { return util.NewID() }
