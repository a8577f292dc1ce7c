package flowspec

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flowprobe/flowprobe/classifier"
	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
)

// Info describes one discovered flow file: the parsed spec plus what a
// caller needs to plan a run without opening the file again.
type Info struct {
	Name       string
	Path       string
	Spec       core.FlowSpec
	ActorCount int
	Media      map[string][]string
}

// Load reads a flow file, choosing the decoder by extension. Supported
// extensions are .json, .yaml and .yml. The returned spec is normalized
// but not validated.
func Load(path string) (core.FlowSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.FlowSpec{}, fmt.Errorf("read flow file %s: %w", path, err)
	}

	var spec core.FlowSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return core.FlowSpec{}, fmt.Errorf("parse flow file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return core.FlowSpec{}, fmt.Errorf("parse flow file %s: %w", path, err)
		}
	default:
		return core.FlowSpec{}, fmt.Errorf("unsupported flow file extension: %s", path)
	}

	return spec.Normalized(), nil
}

// Discover scans dir for flow files, loads and validates each, and returns
// the runnable ones sorted by file name. Files that fail to parse or
// validate are logged and skipped rather than aborting the scan.
func Discover(ctx context.Context, dir string, cls classifier.Classifier, logger logging.Logger) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read flows directory %s: %w", dir, err)
	}

	var flows []Info
	for _, entry := range entries {
		if entry.IsDir() || !isFlowFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		spec, err := Load(path)
		if err != nil {
			logger.Warn("flow skipped", "path", path, "error", err.Error())
			continue
		}
		if err := spec.Validate(); err != nil {
			logger.Warn("flow skipped", "path", path, "error", err.Error())
			continue
		}

		count := spec.ActorCount
		if cls != nil {
			count = cls.EstimateActorCount(ctx, spec)
		}

		flows = append(flows, Info{
			Name:       strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Path:       path,
			Spec:       spec,
			ActorCount: count,
			Media:      spec.MediaRequirements(),
		})
	}

	sort.Slice(flows, func(i, j int) bool { return flows[i].Name < flows[j].Name })
	return flows, nil
}

// CheckMedia verifies that every media file a flow references exists,
// resolving relative paths against mediaDir. It returns the missing paths.
func CheckMedia(spec core.FlowSpec, mediaDir string) []string {
	var missing []string

	var paths []string
	for _, group := range spec.MediaRequirements() {
		paths = append(paths, group...)
	}
	paths = append(paths, spec.RequiredMedia...)

	for _, p := range paths {
		resolved := p
		if !filepath.IsAbs(p) {
			resolved = filepath.Join(mediaDir, p)
		}
		if _, err := os.Stat(resolved); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}

func isFlowFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
