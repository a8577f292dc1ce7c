package classifier

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowprobe/flowprobe/core"
)

// RuleBased classifies steps with deterministic keyword precedence rules.
// It doubles as the fallback for the model-backed variant, so its behavior
// is the contract tests pin down.
type RuleBased struct{}

// NewRuleBased constructs the rule-based classifier.
func NewRuleBased() *RuleBased { return &RuleBased{} }

// Classify applies the keyword rules in fixed precedence order:
// location (both coordinate keywords), image, voice, text, unknown.
func (r *RuleBased) Classify(_ context.Context, step string, _ *core.Actor) core.ToolCall {
	lower := strings.ToLower(step)

	if strings.Contains(lower, "latitude") && strings.Contains(lower, "longitude") {
		lat := DefaultLatitude
		lon := DefaultLongitude
		if m := latitudePattern.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				lat = v
			}
		}
		if m := longitudePattern.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				lon = v
			}
		}
		return core.ToolCall{
			Tool:       core.ToolLocation,
			Parameters: map[string]any{"latitude": lat, "longitude": lon},
		}
	}

	if containsAny(lower, "image", "photo", "picture", "upload") {
		return core.ToolCall{
			Tool: core.ToolImage,
			Parameters: map[string]any{
				"image_path": ExtractImagePath(step),
				"caption":    DefaultImageCaption,
			},
		}
	}

	if containsAny(lower, "voice", "audio", "recording") {
		return core.ToolCall{
			Tool:       core.ToolVoice,
			Parameters: map[string]any{"voice_path": ExtractAudioPath(step)},
		}
	}

	if strings.Contains(lower, "message") {
		body := DefaultTextBody
		if m := quotedPattern.FindStringSubmatch(step); m != nil {
			body = m[1]
		}
		return core.ToolCall{
			Tool:       core.ToolText,
			Parameters: map[string]any{"body": body},
		}
	}

	return core.ToolCall{Tool: core.ToolUnknown, Parameters: map[string]any{}}
}

var actorCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s+users?`),
	regexp.MustCompile(`(\d+)\s+employees?`),
	regexp.MustCompile(`(\d+)\s+people`),
	regexp.MustCompile(`(\d+)\s+workers?`),
	regexp.MustCompile(`for\s+(\d+)`),
}

// EstimateActorCount scans the description for explicit headcounts
// ("20 users", "10 employees", ...) in priority order. Singular language
// ("single", "one", "individual") and no match both yield 1.
func (r *RuleBased) EstimateActorCount(_ context.Context, spec core.FlowSpec) int {
	description := strings.ToLower(spec.Description)

	for _, p := range actorCountPatterns {
		if m := p.FindStringSubmatch(description); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
				return n
			}
		}
	}

	return 1
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
