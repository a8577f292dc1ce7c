package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowprobe/flowprobe/core"
)

func newTestClient(t *testing.T, webhook, latest string) (*Client, *core.ManualClock) {
	t.Helper()
	clock := core.NewManualClock(time.Unix(1700000000, 0))
	client := NewClient(func(o *Options) {
		o.WebhookEndpoint = webhook
		o.LatestMessageEndpoint = latest
		o.Clock = clock
		o.SettleDelay = 3 * time.Second
	})
	return client, clock
}

func TestClient_Push(t *testing.T) {
	t.Run("returns received status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv.URL, "")
		status := client.Push(context.Background(), map[string]any{"object": "whatsapp_business_account"})
		assert.Equal(t, http.StatusAccepted, status)
	})

	t.Run("read timeout is absorbed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		clock := core.NewManualClock(time.Unix(1700000000, 0))
		client := NewClient(func(o *Options) {
			o.WebhookEndpoint = srv.URL
			o.WebhookTimeout = 20 * time.Millisecond
			o.Clock = clock
		})

		status := client.Push(context.Background(), map[string]any{})
		assert.Equal(t, 0, status)
	})

	t.Run("unreachable receiver is absorbed", func(t *testing.T) {
		client, _ := newTestClient(t, "http://127.0.0.1:1/webhook", "")
		status := client.Push(context.Background(), map[string]any{})
		assert.Equal(t, 0, status)
	})
}

func TestClient_FetchLatest(t *testing.T) {
	t.Run("returns body on 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"message_id": "wamid.X"})
		}))
		defer srv.Close()

		client, _ := newTestClient(t, "", srv.URL)
		body, err := client.FetchLatest(context.Background())
		require.NoError(t, err)
		assert.Contains(t, string(body), "wamid.X")
	})

	t.Run("errors on non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, "", srv.URL)
		_, err := client.FetchLatest(context.Background())
		assert.ErrorContains(t, err, "status 404")
	})
}

func TestClient_Deliver(t *testing.T) {
	t.Run("surfaces fetch status after settle delay", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {})
		mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"message_id":"wamid.Y"}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client, clock := newTestClient(t, srv.URL+"/webhook", srv.URL+"/latest")
		outcome := client.Deliver(context.Background(), map[string]any{})

		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.Contains(t, string(outcome.Body), "wamid.Y")
		assert.Equal(t, []time.Duration{3 * time.Second}, clock.Sleeps())
	})

	t.Run("non-200 fetch status fails the outcome", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {})
		mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client, _ := newTestClient(t, srv.URL+"/webhook", srv.URL+"/latest")
		outcome := client.Deliver(context.Background(), map[string]any{})
		assert.Equal(t, http.StatusInternalServerError, outcome.StatusCode)
	})

	t.Run("fetch transport failure yields synthetic 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		client, _ := newTestClient(t, srv.URL, "http://127.0.0.1:1/latest")
		outcome := client.Deliver(context.Background(), map[string]any{})
		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.Empty(t, outcome.Body)
	})
}

func TestClient_Uploads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o600))

	t.Run("image upload sends auth and form fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whatsapp", r.FormValue("messaging_product"))
			assert.Equal(t, "audio/mpeg", r.FormValue("type"))
			_, _, err := r.FormFile("file")
			assert.NoError(t, err)
			json.NewEncoder(w).Encode(map[string]string{"id": "12345"})
		}))
		defer srv.Close()

		client := NewClient(func(o *Options) {
			o.GraphMediaEndpoint = srv.URL
			o.AccessToken = "token-123"
		})

		id, err := client.UploadImage(context.Background(), path, "audio/mpeg")
		require.NoError(t, err)
		assert.Equal(t, "12345", id)
	})

	t.Run("voice upload strips media_ prefix", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"id": "media_abcdef"})
		}))
		defer srv.Close()

		client := NewClient(func(o *Options) {
			o.MediaUploadEndpoint = srv.URL
		})

		id, err := client.UploadVoice(context.Background(), path, "audio/mpeg")
		require.NoError(t, err)
		assert.Equal(t, "abcdef", id)
	})

	t.Run("upload error status is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad token", http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewClient(func(o *Options) {
			o.GraphMediaEndpoint = srv.URL
		})

		_, err := client.UploadImage(context.Background(), path, "image/jpeg")
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("missing file", func(t *testing.T) {
		client := NewClient()
		_, err := client.UploadImage(context.Background(), filepath.Join(dir, "nope.jpg"), "image/jpeg")
		assert.Error(t, err)
	})
}
