package response

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/transport"
)

// Reader polls the latest-message endpoint. All failure modes degrade to
// an absent message; nothing here raises past the call site.
type Reader struct {
	client       *transport.Client
	clock        core.Clock
	logger       *logging.FlowLogger
	pollInterval time.Duration
}

// ReaderOptions configure a Reader.
type ReaderOptions struct {
	Clock        core.Clock
	Logger       logging.Logger
	PollInterval time.Duration
}

// NewReader constructs a Reader over the shared transport client.
func NewReader(client *transport.Client, optFns ...func(o *ReaderOptions)) *Reader {
	opts := ReaderOptions{
		Clock:        core.SystemClock{},
		PollInterval: time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Reader{
		client:       client,
		clock:        opts.Clock,
		logger:       logging.NewFlowLogger(opts.Logger),
		pollInterval: opts.PollInterval,
	}
}

// FetchLatest reads the latest message once. Transport errors and non-200
// statuses are logged and yield nil.
func (r *Reader) FetchLatest(ctx context.Context) *Message {
	body, err := r.client.FetchLatest(ctx)
	if err != nil {
		r.logger.Warn("response.fetch_failed", "error", err.Error())
		return nil
	}
	msg := Parse(body)
	if msg == nil {
		r.logger.Warn("response.unparseable_body")
	}
	return msg
}

// WaitFor polls FetchLatest at the configured interval until a message
// appears or the timeout elapses. A timeout is logged and yields nil, not
// an error.
func (r *Reader) WaitFor(ctx context.Context, timeout time.Duration) *Message {
	deadline := r.clock.Now().Add(timeout)
	for r.clock.Now().Before(deadline) {
		if msg := r.FetchLatest(ctx); msg != nil {
			return msg
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		r.clock.Sleep(ctx, r.pollInterval)
	}
	r.logger.Warn("response.timeout", "timeout", timeout.String())
	return nil
}

// Summary formats a one-line human summary of a message for logs.
func Summary(m *Message) string {
	if m == nil {
		return "No response"
	}

	parts := []string{fmt.Sprintf("Type: %s", m.Type())}

	switch m.Type() {
	case "text":
		if text, ok := ExtractText(m); ok {
			if len(text) > 100 {
				text = text[:100] + "..."
			}
			parts = append(parts, fmt.Sprintf("Text: %s", text))
		}
	case "location":
		if loc, ok := ExtractLocation(m); ok {
			parts = append(parts, fmt.Sprintf("Location: %v, %v", loc.Latitude, loc.Longitude))
		}
	case "image", "audio":
		if info, ok := ExtractMediaInfo(m); ok {
			parts = append(parts, fmt.Sprintf("Media ID: %s", info.ID))
		}
	}

	return strings.Join(parts, " | ")
}
