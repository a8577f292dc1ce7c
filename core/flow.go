package core

import (
	"fmt"
	"regexp"
	"strings"
)

// FlowSpec describes one scripted conversation test case. Instances are
// treated as immutable once loaded; the engine only ever reads them.
type FlowSpec struct {
	// Trigger is the phrase that starts the flow on the receiving system.
	// Optional for generated flows.
	Trigger string `json:"trigger" yaml:"trigger"`
	// Description is free text about the scenario, also used to estimate
	// the actor count ("Expense flow for 20 users").
	Description string `json:"description" yaml:"description"`
	// Steps is the ordered list of natural-language step descriptions.
	Steps []string `json:"flow_steps" yaml:"flow_steps"`
	// DataSource optionally points at the actor data file for this flow.
	DataSource string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	// MediaPaths lists media files the flow references.
	MediaPaths []string `json:"media_paths,omitempty" yaml:"media_paths,omitempty"`
	// RequiredMedia lists media that must exist before the run starts.
	RequiredMedia []string `json:"required_media,omitempty" yaml:"required_media,omitempty"`
	// ActorCount is the number of simulated users; the classifier may
	// override it from the description when left at zero.
	ActorCount int `json:"user_count,omitempty" yaml:"user_count,omitempty"`
	// TimeoutSeconds bounds each network operation of the run.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	// RetryCount is carried for compatibility with existing flow files.
	RetryCount int `json:"retry_count,omitempty" yaml:"retry_count,omitempty"`
	// SuccessCriteria is an optional expression evaluated against the
	// per-actor step statistics (success_rate, successful_steps,
	// total_steps). Empty means the default "success_rate >= 50".
	SuccessCriteria string `json:"success_criteria,omitempty" yaml:"success_criteria,omitempty"`
}

// Normalized returns a copy with defaulted numeric fields so Validate and
// the engine see consistent values regardless of how sparse the source file
// was.
func (s FlowSpec) Normalized() FlowSpec {
	if s.ActorCount == 0 {
		s.ActorCount = 1
	}
	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = 30
	}
	return s
}

// Validate checks the flow and returns a *ConfigurationError listing every
// problem found, or nil when the flow is runnable. It never touches the
// network.
func (s FlowSpec) Validate() error {
	var problems []string

	if strings.TrimSpace(s.Description) == "" {
		problems = append(problems, "flow description is required")
	}
	if len(s.Steps) == 0 {
		problems = append(problems, "flow steps are required")
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step) == "" {
			problems = append(problems, fmt.Sprintf("flow step %d is invalid", i+1))
		}
	}
	for _, p := range s.MediaPaths {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, "invalid media path")
		}
	}
	if s.ActorCount < 1 {
		problems = append(problems, "user count must be a positive integer")
	}
	if s.TimeoutSeconds < 1 {
		problems = append(problems, "timeout must be a positive integer")
	}
	if s.RetryCount < 0 {
		problems = append(problems, "retry count must be a non-negative integer")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

var (
	imagePathPattern = regexp.MustCompile(`(?i)'([^']*\.(?:jpg|jpeg|png|gif|bmp|webp))'`)
	audioPathPattern = regexp.MustCompile(`(?i)'([^']*\.(?:wav|mp3|mp4|ogg|flac|m4a|aac|opus))'`)

	imageKeywords = []string{"image", "photo", "picture", "upload"}
	audioKeywords = []string{"voice", "audio", "recording"}
)

// MediaRequirements scans the flow steps for quoted media file references
// and returns them grouped by kind ("images", "audio"). The scan only
// triggers on steps that also carry a media keyword, mirroring how steps
// are classified at run time.
func (s FlowSpec) MediaRequirements() map[string][]string {
	reqs := map[string][]string{}

	for _, step := range s.Steps {
		lower := strings.ToLower(step)

		if containsAny(lower, imageKeywords) {
			for _, m := range imagePathPattern.FindAllStringSubmatch(step, -1) {
				reqs["images"] = append(reqs["images"], m[1])
			}
		}
		if containsAny(lower, audioKeywords) {
			for _, m := range audioPathPattern.FindAllStringSubmatch(step, -1) {
				reqs["audio"] = append(reqs["audio"], m[1])
			}
		}
	}
	return reqs
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
