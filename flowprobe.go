// Package flowprobe provides a high-level façade over the flow engine and
// its collaborators (classifier, tool registry, transport, response
// reader). Most applications interact with this package by:
//  1. Creating a Probe via New() from Settings (environment or YAML file)
//  2. Loading a flow with LoadFlow or discovering flows with Discover
//  3. Running it against one or more actors with Run
//
// The façade delegates execution to engine.Engine while keeping setup
// ergonomics concise. All defaults are safe against local collaborator
// deployments.
package flowprobe

import (
	"context"
	"path/filepath"

	"github.com/flowprobe/flowprobe/actor"
	"github.com/flowprobe/flowprobe/classifier"
	"github.com/flowprobe/flowprobe/config"
	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/engine"
	"github.com/flowprobe/flowprobe/flowspec"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/model"
	"github.com/flowprobe/flowprobe/model/anthropic"
	"github.com/flowprobe/flowprobe/model/openai"
	"github.com/flowprobe/flowprobe/response"
	"github.com/flowprobe/flowprobe/tool"
	"github.com/flowprobe/flowprobe/transport"
)

// Options configure the Probe beyond what Settings carry.
type Options struct {
	// Settings provide credentials, endpoints and timing. Defaults to
	// config.FromEnv().
	Settings *config.Settings

	// Completer overrides the model used for step classification. When
	// nil one is chosen from the configured credentials, and the
	// classifier falls back to rules when no credentials exist.
	Completer model.Completer

	// Clock lets tests replace real delays. Defaults to the system clock.
	Clock core.Clock

	// Logger defaults to a structured logger built from Settings.
	Logger logging.Logger
}

// Probe bundles a fully wired engine with the loaders around it.
type Probe struct {
	settings   *config.Settings
	classifier classifier.Classifier
	registry   *tool.Registry
	reader     *response.Reader
	engine     *engine.Engine
	loader     *actor.Loader
	logger     logging.Logger
}

// New creates a Probe with optional overrides. Every collaborator is
// constructed from Settings unless replaced through Options.
func New(optFns ...func(o *Options)) *Probe {
	opts := Options{
		Clock: core.SystemClock{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	settings := opts.Settings
	if settings == nil {
		settings = config.FromEnv()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(&logging.Config{
			Level:  logging.ParseLevel(settings.LogLevel),
			Format: settings.LogFormat,
		})
	}

	completer := opts.Completer
	if completer == nil {
		completer = completerFromSettings(settings)
	}
	cls := classifier.New(completer, logger)

	client := transport.NewClient(func(o *transport.Options) {
		o.WebhookEndpoint = settings.WebhookEndpoint()
		o.LatestMessageEndpoint = settings.LatestMessageEndpoint()
		o.MediaUploadEndpoint = settings.MediaUploadEndpoint()
		o.GraphMediaEndpoint = settings.GraphMediaEndpoint()
		o.AccessToken = settings.WhatsAppAccessToken
		o.WebhookTimeout = settings.WebhookTimeout
		o.FetchTimeout = settings.FetchTimeout
		o.UploadTimeout = settings.UploadTimeout
		o.SettleDelay = settings.SettleDelay
		o.WebhookRPS = settings.WebhookRPS
		o.Clock = opts.Clock
		o.Logger = logger
	})

	registry := tool.NewRegistry(client, settings.WhatsAppPhoneNumberID)

	reader := response.NewReader(client, func(o *response.ReaderOptions) {
		o.Clock = opts.Clock
		o.Logger = logger
		o.PollInterval = settings.PollInterval
	})

	flowLogger := logging.NewFlowLogger(logger)
	executor := engine.NewStepExecutor(cls, registry, reader, opts.Clock, flowLogger, settings.ResponseDelay)
	runner := engine.NewRunner(executor, registry, reader, opts.Clock, flowLogger,
		settings.StepDelay, settings.ResponseDelay)
	eng := engine.NewEngine(runner, opts.Clock, flowLogger, settings.ActorDelay)

	return &Probe{
		settings:   settings,
		classifier: cls,
		registry:   registry,
		reader:     reader,
		engine:     eng,
		loader:     actor.NewLoader(logger),
		logger:     logger,
	}
}

// completerFromSettings picks a model adapter from whichever credential is
// configured, OpenAI first. Nil means rule-based classification only.
func completerFromSettings(s *config.Settings) model.Completer {
	switch {
	case s.OpenAIAPIKey != "":
		return openai.New(func(o *openai.Options) { o.APIKey = s.OpenAIAPIKey })
	case s.AnthropicAPIKey != "":
		return anthropic.New(func(o *anthropic.Options) { o.APIKey = s.AnthropicAPIKey })
	}
	return nil
}

// Settings exposes the effective configuration.
func (p *Probe) Settings() *config.Settings { return p.settings }

// LoadFlow reads and normalizes a single flow file.
func (p *Probe) LoadFlow(path string) (core.FlowSpec, error) {
	return flowspec.Load(path)
}

// Discover lists the runnable flows in the configured flows directory.
func (p *Probe) Discover(ctx context.Context) ([]flowspec.Info, error) {
	return flowspec.Discover(ctx, p.settings.FlowsDir, p.classifier, p.logger)
}

// Actors loads actors for a flow. The flow's own data source wins over the
// configured default, and the list is sized to the flow's estimated actor
// count.
func (p *Probe) Actors(ctx context.Context, spec core.FlowSpec) []core.Actor {
	path := spec.DataSource
	if path == "" {
		path = filepath.Join(p.settings.DataDir, p.settings.ActorDataFile)
	}
	count := p.classifier.EstimateActorCount(ctx, spec)
	return p.loader.Load(path, count)
}

// CheckMedia reports media files the flow references that do not exist.
func (p *Probe) CheckMedia(spec core.FlowSpec) []string {
	return flowspec.CheckMedia(spec, p.settings.MediaDir)
}

// Run executes the flow for the given actors. When actors is empty they
// are loaded via Actors first.
func (p *Probe) Run(ctx context.Context, spec core.FlowSpec, actors []core.Actor) (core.RunResult, error) {
	if len(actors) == 0 {
		actors = p.Actors(ctx, spec)
	}
	return p.engine.Run(ctx, spec, actors)
}
