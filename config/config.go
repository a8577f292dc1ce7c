// Package config loads flowprobe settings from the environment with an
// optional YAML overlay file, and derives the collaborator endpoints the
// transport layer talks to.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds every externally tunable value: credentials, collaborator
// base URLs, directories and the timing knobs of a run. All delays are
// fixed configuration values; nothing in the engine computes backoff.
type Settings struct {
	// WhatsApp Graph API credentials for image uploads.
	WhatsAppAccessToken   string `yaml:"whatsapp_access_token"`
	WhatsAppPhoneNumberID string `yaml:"whatsapp_phone_number_id"`

	// Model provider credentials. When both are empty the classifier
	// runs rule-based only.
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	// WebhookBaseURL is the receiving system (webhook) base URL.
	WebhookBaseURL string `yaml:"webhook_base_url"`
	// MessageAPIBaseURL is the companion message/media API base URL.
	MessageAPIBaseURL string `yaml:"message_api_base_url"`

	// FlowsDir holds flow spec files; DataDir holds actor data.
	FlowsDir string `yaml:"flows_dir"`
	MediaDir string `yaml:"media_dir"`
	DataDir  string `yaml:"data_dir"`
	// ActorDataFile is the default actor source when a flow names none.
	ActorDataFile string `yaml:"actor_data_file"`

	// Timing knobs. The webhook push treats a read timeout as
	// acceptance, so WebhookTimeout stays short.
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	UploadTimeout  time.Duration `yaml:"upload_timeout"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
	ResponseDelay  time.Duration `yaml:"response_delay"`
	StepDelay      time.Duration `yaml:"step_delay"`
	ActorDelay     time.Duration `yaml:"actor_delay"`
	PollInterval   time.Duration `yaml:"poll_interval"`

	// WebhookRPS caps outbound webhook pushes per second. Zero disables
	// the limiter.
	WebhookRPS float64 `yaml:"webhook_rps"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the baseline settings matching a local development
// deployment of the collaborators.
func Default() *Settings {
	return &Settings{
		WebhookBaseURL:    "http://localhost:3000",
		MessageAPIBaseURL: "http://localhost:8000",
		FlowsDir:          "flows",
		MediaDir:          "media",
		DataDir:           "data",
		ActorDataFile:     "employees.csv",
		WebhookTimeout:    2 * time.Second,
		FetchTimeout:      10 * time.Second,
		UploadTimeout:     30 * time.Second,
		SettleDelay:       3 * time.Second,
		ResponseDelay:     2 * time.Second,
		StepDelay:         1 * time.Second,
		ActorDelay:        2 * time.Second,
		PollInterval:      1 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// FromEnv builds Settings from the process environment on top of Default.
func FromEnv() *Settings {
	s := Default()
	setString(&s.WhatsAppAccessToken, "WHATSAPP_ACCESS_TOKEN")
	setString(&s.WhatsAppPhoneNumberID, "WHATSAPP_PHONE_NUMBER_ID")
	setString(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&s.WebhookBaseURL, "WEBHOOK_BASE_URL")
	setString(&s.MessageAPIBaseURL, "MESSAGE_API_URL")
	setString(&s.FlowsDir, "FLOWS_DIRECTORY")
	setString(&s.MediaDir, "MEDIA_DIRECTORY")
	setString(&s.DataDir, "DATA_DIRECTORY")
	setString(&s.ActorDataFile, "DEFAULT_ACTOR_DATA")
	setString(&s.LogLevel, "LOG_LEVEL")
	setString(&s.LogFormat, "LOG_FORMAT")
	setSeconds(&s.ActorDelay, "EXECUTION_DELAY")
	setSeconds(&s.UploadTimeout, "TIMEOUT_SECONDS")
	return s
}

// Load reads a YAML settings file over the environment-derived defaults.
func Load(path string) (*Settings, error) {
	s := FromEnv()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return s, nil
}

// WebhookEndpoint is the full URL messages are pushed to.
func (s *Settings) WebhookEndpoint() string {
	return s.WebhookBaseURL + "/process-whatsapp-webhook"
}

// LatestMessageEndpoint is the single-slot inbound message endpoint.
func (s *Settings) LatestMessageEndpoint() string {
	return s.MessageAPIBaseURL + "/latest_message"
}

// MediaUploadEndpoint is the companion API's voice upload endpoint.
func (s *Settings) MediaUploadEndpoint() string {
	return s.MessageAPIBaseURL + "/media/upload"
}

// GraphMediaEndpoint is the WhatsApp Graph API media upload URL for the
// configured phone number id.
func (s *Settings) GraphMediaEndpoint() string {
	return fmt.Sprintf("https://graph.facebook.com/v21.0/%s/media", s.WhatsAppPhoneNumberID)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = time.Duration(n) * time.Second
		}
	}
}
