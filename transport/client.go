package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
)

// DeliveryOutcome is the result of a two-phase send: webhook push followed
// by the blocking latest-message read. Body is the raw message JSON, nil
// when the read degraded to a synthetic outcome.
type DeliveryOutcome struct {
	StatusCode int
	Body       []byte
}

// Options configure the transport Client.
type Options struct {
	WebhookEndpoint       string
	LatestMessageEndpoint string
	MediaUploadEndpoint   string
	GraphMediaEndpoint    string
	AccessToken           string

	WebhookTimeout time.Duration
	FetchTimeout   time.Duration
	UploadTimeout  time.Duration
	SettleDelay    time.Duration

	// WebhookRPS caps webhook pushes per second; zero means unlimited.
	WebhookRPS float64

	Clock  core.Clock
	Logger logging.Logger
}

// Client performs all collaborator HTTP calls. It is safe for sequential
// reuse across actors; the engine never calls it concurrently.
type Client struct {
	webhookClient *http.Client
	fetchClient   *http.Client
	uploadClient  *http.Client
	limiter       *rate.Limiter
	clock         core.Clock
	logger        *logging.FlowLogger
	opts          Options
}

// NewClient constructs a Client with optional overrides.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		WebhookTimeout: 2 * time.Second,
		FetchTimeout:   10 * time.Second,
		UploadTimeout:  30 * time.Second,
		SettleDelay:    3 * time.Second,
		Clock:          core.SystemClock{},
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	limit := rate.Inf
	if opts.WebhookRPS > 0 {
		limit = rate.Limit(opts.WebhookRPS)
	}

	return &Client{
		webhookClient: &http.Client{Timeout: opts.WebhookTimeout},
		fetchClient:   &http.Client{Timeout: opts.FetchTimeout},
		uploadClient:  &http.Client{Timeout: opts.UploadTimeout},
		limiter:       rate.NewLimiter(limit, 1),
		clock:         opts.Clock,
		logger:        logging.NewFlowLogger(opts.Logger),
		opts:          opts,
	}
}

// Push sends the envelope to the webhook endpoint. It returns the HTTP
// status when one was received; a read timeout or any other transport
// error returns 0 and is absorbed here, never failing the caller.
func (c *Client) Push(ctx context.Context, envelope any) int {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		c.logger.Warn("webhook.marshal_failed", "error", err.Error())
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.WebhookEndpoint, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("webhook.request_failed", "error", err.Error())
		return 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.webhookClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			// Expected: the receiver accepted the payload but did not
			// answer inside the short push timeout.
			c.logger.Debug("webhook.accepted_on_timeout")
		} else {
			c.logger.Warn("webhook.send_issue", "error", err.Error())
		}
		return 0
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	c.logger.Debug("webhook.sent", "status", resp.StatusCode)
	return resp.StatusCode
}

// FetchLatest reads the companion API's latest-message slot. Non-200
// statuses and transport errors are returned as errors; callers decide
// how to degrade.
func (c *Client) FetchLatest(ctx context.Context) ([]byte, error) {
	status, body, err := c.fetchLatestRaw(ctx)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("latest message returned status %d", status)
	}
	return body, nil
}

func (c *Client) fetchLatestRaw(ctx context.Context) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.LatestMessageEndpoint, nil)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.fetchClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("fetching latest message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// Deliver performs the full two-phase send: push the envelope, wait the
// settling delay, then block on the latest-message read. The read's HTTP
// status becomes the outcome status; a transport-level failure of the read
// yields a synthetic 200 outcome with no body so the run proceeds.
func (c *Client) Deliver(ctx context.Context, envelope any) DeliveryOutcome {
	c.Push(ctx, envelope)
	c.clock.Sleep(ctx, c.opts.SettleDelay)

	status, body, err := c.fetchLatestRaw(ctx)
	if err != nil {
		c.logger.Warn("deliver.fetch_failed", "error", err.Error())
		return DeliveryOutcome{StatusCode: http.StatusOK}
	}
	return DeliveryOutcome{StatusCode: status, Body: body}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
