package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/internal/util"
	"github.com/flowprobe/flowprobe/transport"
)

// ImageSender sends image messages backed by the WhatsApp Graph media API.
type ImageSender struct {
	client        *transport.Client
	phoneNumberID string
}

// NewImageSender constructs the image sender.
func NewImageSender(client *transport.Client, phoneNumberID string) *ImageSender {
	return &ImageSender{client: client, phoneNumberID: phoneNumberID}
}

// Name returns core.ToolImage.
func (s *ImageSender) Name() core.ToolType { return core.ToolImage }

// Upload pushes the image to the Graph media endpoint and returns its
// media reference. The content hash is base64-encoded SHA-256, as the
// Graph provider expects.
func (s *ImageSender) Upload(ctx context.Context, path string) (MediaRef, error) {
	if _, err := os.Stat(path); err != nil {
		return MediaRef{}, NewToolError(string(s.Name()),
			fmt.Sprintf("image file not found: %s", path), CodeMediaMissing)
	}

	mimeType := imageMimeType(path)
	id, err := s.client.UploadImage(ctx, path, mimeType)
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
		SHA256:   base64.StdEncoding.EncodeToString(sum),
	}, nil
}

// BuildEnvelope constructs an image message envelope. When replying, the
// context block carries the provider's literal sender and the envelope
// pins the provider's entry id, with the timestamp emitted as a string;
// this mirrors real webhook traffic and must not be normalized.
func (s *ImageSender) BuildEnvelope(actor core.Actor, params map[string]any, replyTo string) (*Envelope, error) {
	caption, _ := params["caption"].(string)

	msg := Message{
		From:      actor.Phone,
		ID:        util.NewMessageID(),
		Timestamp: time.Now().Unix(),
		Type:      "image",
		Image: &Media{
			ID:       stringParam(params, "media_id"),
			MimeType: stringParam(params, "mime_type"),
			SHA256:   stringParam(params, "sha256"),
			Caption:  caption,
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
func (s *ImageSender) Deliver(ctx context.Context, env *Envelope) transport.DeliveryOutcome {
	return s.client.Deliver(ctx, env)
}

// ValidateParameters checks the image path and caption ceiling.
func (s *ImageSender) ValidateParameters(params map[string]any) (bool, []string) {
	var errs []string

	path, ok := params["image_path"].(string)
	if !ok || path == "" {
		errs = append(errs, "image path is required")
	} else {
		errs = append(errs, validateMediaFile(path, "Image", imageMimeTypes)...)
	}

	if caption, ok := params["caption"].(string); ok && len(caption) > 1024 {
		errs = append(errs, "image caption too long (max 1024 characters)")
	}
	return len(errs) == 0, errs
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
