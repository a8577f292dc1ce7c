package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "http://localhost:3000", s.WebhookBaseURL)
	assert.Equal(t, 2*time.Second, s.WebhookTimeout)
	assert.Equal(t, 3*time.Second, s.SettleDelay)
	assert.Equal(t, 30*time.Second, s.UploadTimeout)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WEBHOOK_BASE_URL", "http://example.test")
	t.Setenv("EXECUTION_DELAY", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s := FromEnv()
	assert.Equal(t, "http://example.test", s.WebhookBaseURL)
	assert.Equal(t, 5*time.Second, s.ActorDelay)
	assert.Equal(t, "sk-test", s.OpenAIAPIKey)
	// untouched values keep their defaults
	assert.Equal(t, "http://localhost:8000", s.MessageAPIBaseURL)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"webhook_base_url: http://file.test\nwhatsapp_phone_number_id: pn-42\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.test", s.WebhookBaseURL)
	assert.Equal(t, "pn-42", s.WhatsAppPhoneNumberID)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEndpoints(t *testing.T) {
	s := Default()
	s.WhatsAppPhoneNumberID = "123"
	assert.Equal(t, "http://localhost:3000/process-whatsapp-webhook", s.WebhookEndpoint())
	assert.Equal(t, "http://localhost:8000/latest_message", s.LatestMessageEndpoint())
	assert.Equal(t, "http://localhost:8000/media/upload", s.MediaUploadEndpoint())
	assert.Equal(t, "https://graph.facebook.com/v21.0/123/media", s.GraphMediaEndpoint())
}
