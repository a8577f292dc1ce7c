package tool

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/internal/util"
	"github.com/flowprobe/flowprobe/transport"
)

// VoiceSender sends voice note messages backed by the companion API's
// media upload endpoint.
type VoiceSender struct {
	client        *transport.Client
	phoneNumberID string
}

// NewVoiceSender constructs the voice sender.
func NewVoiceSender(client *transport.Client, phoneNumberID string) *VoiceSender {
	return &VoiceSender{client: client, phoneNumberID: phoneNumberID}
}

// Name returns core.ToolVoice.
func (s *VoiceSender) Name() core.ToolType { return core.ToolVoice }

// Upload pushes the audio file to the companion media endpoint and returns
// its media reference. The content hash is hex-encoded SHA-256; this
// differs from the image sender's base64 because the two downstream
// providers expect different encodings.
func (s *VoiceSender) Upload(ctx context.Context, path string) (MediaRef, error) {
	if _, err := os.Stat(path); err != nil {
		return MediaRef{}, NewToolError(string(s.Name()),
			fmt.Sprintf("voice file not found: %s", path), CodeMediaMissing)
	}

	mimeType := audioMimeType(path)
	id, err := s.client.UploadVoice(ctx, path, mimeType)
	if err != nil {
		return MediaRef{}, NewToolError(string(s.Name()), err.Error(), CodeUploadFailed)
	}

	sum, err := fileSHA256(path)
	if err != nil {
		return MediaRef{}, NewToolError(string(s.Name()), err.Error(), CodeUploadFailed)
	}

	return MediaRef{
		ID:       id,
		MimeType: mimeType,
		SHA256:   hex.EncodeToString(sum),
	}, nil
}

// BuildEnvelope constructs a voice message envelope with the audio payload
// marked as a voice note. The same media-reply quirks as the image sender
// apply.
func (s *VoiceSender) BuildEnvelope(actor core.Actor, params map[string]any, replyTo string) (*Envelope, error) {
	msg := Message{
		From:      actor.Phone,
		ID:        util.NewMessageID(),
		Timestamp: time.Now().Unix(),
		Type:      "audio",
		Audio: &Media{
			ID:       stringParam(params, "media_id"),
			MimeType: stringParam(params, "mime_type"),
			SHA256:   stringParam(params, "sha256"),
			Voice:    true,
		},
	}

	entryID := newEntryID()
	if replyTo != "" {
		msg.Context = &ReplyContext{From: mediaReplyFrom, ID: replyTo}
		msg.Timestamp = strconv.FormatInt(time.Now().Unix(), 10)
		entryID = mediaReplyEntryID
	}

	return newEnvelope(actor, s.phoneNumberID, entryID, msg), nil
}

// Deliver performs the two-phase send.
func (s *VoiceSender) Deliver(ctx context.Context, env *Envelope) transport.DeliveryOutcome {
	return s.client.Deliver(ctx, env)
}

// ValidateParameters checks the voice path.
func (s *VoiceSender) ValidateParameters(params map[string]any) (bool, []string) {
	var errs []string

	path, ok := params["voice_path"].(string)
	if !ok || path == "" {
		errs = append(errs, "voice path is required")
	} else {
		errs = append(errs, validateMediaFile(path, "Voice", audioMimeTypes)...)
	}
	return len(errs) == 0, errs
}
