package classifier

import (
	"context"
	"regexp"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/model"
)

// Default coordinates used when a location step names no explicit
// latitude/longitude. Carried over from the receiving system's test site.
const (
	DefaultLatitude  = 16.542298847112292
	DefaultLongitude = 81.4968731867673
)

// DefaultTextBody is the message body used when a text step quotes nothing.
const DefaultTextBody = "test message"

// DefaultImageCaption is the caption used when an image step names none.
const DefaultImageCaption = "Image"

var (
	imagePathPattern = regexp.MustCompile(`(?i)'([^']*\.(?:jpg|jpeg|png|gif|bmp|webp))'`)
	audioPathPattern = regexp.MustCompile(`(?i)'([^']*\.(?:wav|mp3|mp4|ogg|flac|m4a|aac|opus))'`)
	quotedPattern    = regexp.MustCompile(`'([^']*)'`)
	latitudePattern  = regexp.MustCompile(`latitude[:\s]+([0-9.-]+)`)
	longitudePattern = regexp.MustCompile(`longitude[:\s]+([0-9.-]+)`)
)

// Classifier maps a free-text step description to a structured ToolCall.
// Implementations never return an error: unparseable input classifies as
// core.ToolUnknown with empty parameters.
type Classifier interface {
	// Classify analyzes one step. The actor, when non-nil, provides
	// naming context only; classification must not inject actor names
	// into message bodies.
	Classify(ctx context.Context, step string, actor *core.Actor) core.ToolCall

	// EstimateActorCount extracts the headcount a flow implies from its
	// description. The result is always >= 1.
	EstimateActorCount(ctx context.Context, spec core.FlowSpec) int
}

// New selects the classifier variant: model-backed when a Completer is
// supplied, rule-based otherwise.
func New(completer model.Completer, logger logging.Logger) Classifier {
	if completer == nil {
		return NewRuleBased()
	}
	return NewModelBacked(completer, logger)
}

// ExtractImagePath returns the first quoted image file path in the step,
// matched case-insensitively on the extension.
func ExtractImagePath(step string) string {
	if m := imagePathPattern.FindStringSubmatch(step); m != nil {
		return m[1]
	}
	return ""
}

// ExtractAudioPath returns the first quoted audio file path in the step,
// matched case-insensitively on the extension.
func ExtractAudioPath(step string) string {
	if m := audioPathPattern.FindStringSubmatch(step); m != nil {
		return m[1]
	}
	return ""
}
