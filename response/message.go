package response

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Message wraps one inbound message payload. The zero value is not used;
// Parse returns nil for bodies that are not JSON objects.
type Message struct {
	raw gjson.Result
}

// Parse wraps a raw latest-message body. Returns nil when the body is not
// a JSON object.
func Parse(body []byte) *Message {
	if !gjson.ValidBytes(body) {
		return nil
	}
	result := gjson.ParseBytes(body)
	if !result.IsObject() {
		return nil
	}
	return &Message{raw: result}
}

// ID returns the message id the companion API assigned, or "".
func (m *Message) ID() string {
	if m == nil {
		return ""
	}
	return m.raw.Get("message_id").String()
}

// Type returns the declared message type, or "unknown".
func (m *Message) Type() string {
	if m == nil {
		return "unknown"
	}
	if t := m.raw.Get("type"); t.Exists() {
		return t.String()
	}
	return "unknown"
}

// Map returns the message as a generic map for inclusion in step outcomes.
func (m *Message) Map() map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m.raw.Value().(map[string]any); ok {
		return v
	}
	return nil
}

// LocationData is an extracted location payload.
type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

// MediaInfo is an extracted image or audio payload.
type MediaInfo struct {
	Type     string `json:"type"` // "image" or "audio"
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Caption  string `json:"caption,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
}

// ProcessedData is content the companion system extracted from a media
// message (OCR readings, transcriptions and the like).
type ProcessedData struct {
	Content string         `json:"content"`
	Source  map[string]any `json:"source"`
}

// Map renders the processed data in the step outcome shape.
func (p *ProcessedData) Map() map[string]any {
	return map[string]any{
		"type":    "extracted_data",
		"content": p.Content,
		"source":  p.Source,
	}
}

// ExtractText returns the message's text body, falling back to the
// interactive body text. The second return is false when neither exists.
func ExtractText(m *Message) (string, bool) {
	if m == nil {
		return "", false
	}
	if body := m.raw.Get("text.body"); body.Exists() {
		return body.String(), true
	}
	if body := m.raw.Get("interactive.body.text"); body.Exists() {
		return body.String(), true
	}
	return "", false
}

// ExtractLocation returns the message's location payload, if any.
func ExtractLocation(m *Message) (*LocationData, bool) {
	if m == nil {
		return nil, false
	}
	loc := m.raw.Get("location")
	if !loc.IsObject() {
		return nil, false
	}
	lat := loc.Get("latitude")
	lon := loc.Get("longitude")
	if !lat.Exists() || !lon.Exists() {
		return nil, false
	}
	return &LocationData{
		Latitude:  lat.Float(),
		Longitude: lon.Float(),
		Name:      loc.Get("name").String(),
		Address:   loc.Get("address").String(),
	}, true
}

// ExtractMediaInfo returns the message's image or audio payload, if any.
func ExtractMediaInfo(m *Message) (*MediaInfo, bool) {
	if m == nil {
		return nil, false
	}
	if img := m.raw.Get("image"); img.IsObject() {
		return &MediaInfo{
			Type:     "image",
			ID:       img.Get("id").String(),
			MimeType: img.Get("mime_type").String(),
			SHA256:   img.Get("sha256").String(),
			Caption:  img.Get("caption").String(),
		}, true
	}
	if audio := m.raw.Get("audio"); audio.IsObject() {
		return &MediaInfo{
			Type:     "audio",
			ID:       audio.Get("id").String(),
			MimeType: audio.Get("mime_type").String(),
			SHA256:   audio.Get("sha256").String(),
			Voice:    audio.Get("voice").Bool(),
		}, true
	}
	return nil, false
}

// processedKeywords gate plain text bodies: the companion system returns
// the same shape for raw echoes and processed extractions, and keyword
// presence is the only available discriminator.
var processedKeywords = []string{
	"odometer", "reading", "miles", "km", "kilometers",
	"invoice", "receipt", "amount", "total", "date",
	"extracted", "details", "confirm", "transcription",
	"voice", "audio", "spoken", "said", "transcript",
}

// ExtractProcessedData returns domain-extracted content from a media
// response: the interactive body text when present, else a plain text
// body that carries at least one extraction keyword.
func ExtractProcessedData(m *Message) (*ProcessedData, bool) {
	if m == nil {
		return nil, false
	}

	if body := m.raw.Get("interactive.body.text"); body.Exists() && body.String() != "" {
		return &ProcessedData{Content: body.String(), Source: m.Map()}, true
	}

	if body := m.raw.Get("text.body"); body.Exists() {
		text := body.String()
		if text != "" && isProcessedContent(text) {
			return &ProcessedData{Content: text, Source: m.Map()}, true
		}
	}
	return nil, false
}

func isProcessedContent(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range processedKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
