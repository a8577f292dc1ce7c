package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/flowprobe/flowprobe/classifier"
	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/response"
	"github.com/flowprobe/flowprobe/tool"
	"github.com/flowprobe/flowprobe/transport"
)

// collab fakes the webhook receiver and the companion latest-message API
// behind one httptest server.
type collab struct {
	mu           sync.Mutex
	envelopes    []string
	latestBody   string
	latestStatus int
}

func (c *collab) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.envelopes = append(c.envelopes, string(body))
		c.mu.Unlock()
	})
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		status, body := c.latestStatus, c.latestBody
		c.mu.Unlock()
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
	return mux
}

func (c *collab) setLatest(status int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latestStatus, c.latestBody = status, body
}

func (c *collab) posted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.envelopes...)
}

type harness struct {
	collab   *collab
	clock    *core.ManualClock
	executor *StepExecutor
	runner   *Runner
	engine   *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	c := &collab{latestBody: `{"message_id":"wamid.resp","type":"text","text":{"body":"ok"}}`}
	srv := httptest.NewServer(c.handler())
	t.Cleanup(srv.Close)

	clock := core.NewManualClock(time.Unix(1700000000, 0))
	client := transport.NewClient(func(o *transport.Options) {
		o.WebhookEndpoint = srv.URL + "/webhook"
		o.LatestMessageEndpoint = srv.URL + "/latest"
		o.SettleDelay = 3 * time.Second
		o.Clock = clock
	})

	registry := tool.NewRegistry(client, "pn-1")
	reader := response.NewReader(client, func(o *response.ReaderOptions) {
		o.Clock = clock
	})

	flowLogger := logging.NewFlowLogger(logging.NoOpLogger{})
	executor := NewStepExecutor(classifier.NewRuleBased(), registry, reader, clock, flowLogger, 2*time.Second)
	runner := NewRunner(executor, registry, reader, clock, flowLogger, time.Second, 2*time.Second)
	engine := NewEngine(runner, clock, flowLogger, 2*time.Second)

	return &harness{collab: c, clock: clock, executor: executor, runner: runner, engine: engine}
}

var engineActor = core.Actor{Phone: "919705184409", Name: "Nikhil"}

func TestStepExecutor_TextStep(t *testing.T) {
	h := newHarness(t)
	execCtx := &core.ExecutionContext{}

	outcome := h.executor.Execute(context.Background(), 0, "User sends message 'Hello'", engineActor, execCtx)

	assert.True(t, outcome.Success)
	assert.Equal(t, core.ToolText, outcome.Tool)
	assert.Empty(t, outcome.Error)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, "wamid.resp", outcome.Response["message_id"])

	// the response id becomes the next reply anchor
	assert.Equal(t, "wamid.resp", execCtx.LastMessageID)

	posted := h.collab.posted()
	require.Len(t, posted, 1)
	assert.Equal(t, "Hello", gjson.Get(posted[0], "entry.0.changes.0.value.messages.0.text.body").String())
	assert.False(t, gjson.Get(posted[0], "entry.0.changes.0.value.messages.0.context").Exists())
}

func TestStepExecutor_ReplyChain(t *testing.T) {
	h := newHarness(t)
	execCtx := &core.ExecutionContext{}
	ctx := context.Background()

	h.executor.Execute(ctx, 0, "User sends message 'first'", engineActor, execCtx)
	h.collab.setLatest(200, `{"message_id":"wamid.second","type":"text","text":{"body":"next"}}`)
	h.executor.Execute(ctx, 1, "User sends message 'second'", engineActor, execCtx)

	posted := h.collab.posted()
	require.Len(t, posted, 2)
	assert.Equal(t, "wamid.resp", gjson.Get(posted[1], "entry.0.changes.0.value.messages.0.context.id").String())
	assert.Equal(t, "wamid.second", execCtx.LastMessageID)

	// a response without a message id leaves the anchor unchanged
	h.collab.setLatest(200, `{"type":"text","text":{"body":"no id"}}`)
	h.executor.Execute(ctx, 2, "User sends message 'third'", engineActor, execCtx)
	assert.Equal(t, "wamid.second", execCtx.LastMessageID)

	h.executor.Execute(ctx, 3, "User sends message 'fourth'", engineActor, execCtx)
	posted = h.collab.posted()
	require.Len(t, posted, 4)
	assert.Equal(t, "wamid.second", gjson.Get(posted[3], "entry.0.changes.0.value.messages.0.context.id").String())
}

func TestStepExecutor_UnknownStep(t *testing.T) {
	h := newHarness(t)
	execCtx := &core.ExecutionContext{}

	outcome := h.executor.Execute(context.Background(), 0, "Wait for manager approval", engineActor, execCtx)

	assert.False(t, outcome.Success)
	assert.Equal(t, core.ToolUnknown, outcome.Tool)
	assert.Equal(t, "Unknown tool type", outcome.Error)
	// nothing was dispatched
	assert.Empty(t, h.collab.posted())
	assert.Empty(t, execCtx.LastMessageID)
}

func TestStepExecutor_DeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.collab.setLatest(http.StatusInternalServerError, "")

	outcome := h.executor.Execute(context.Background(), 0, "User sends message 'x'",
		engineActor, &core.ExecutionContext{})

	assert.False(t, outcome.Success)
	assert.Equal(t, "Tool execution failed with status 500", outcome.Error)
}

func TestStepExecutor_MissingMediaFile(t *testing.T) {
	h := newHarness(t)

	outcome := h.executor.Execute(context.Background(), 0, "Upload image 'absent/bill.jpg'",
		engineActor, &core.ExecutionContext{})

	assert.False(t, outcome.Success)
	assert.Equal(t, core.ToolImage, outcome.Tool)
	assert.Equal(t, "image file not found: absent/bill.jpg", outcome.Error)
	assert.Empty(t, h.collab.posted())
}

func TestRunner_SuccessRate(t *testing.T) {
	h := newHarness(t)
	criteria, err := CompileCriteria("")
	require.NoError(t, err)

	spec := core.FlowSpec{
		Description: "mixed flow",
		Steps: []string{
			"User sends message 'one'",
			"Wait for approval",
			"User sends message 'two'",
			"Something unclassifiable",
		},
	}.Normalized()

	result := h.runner.Run(context.Background(), spec, engineActor, criteria, false)

	require.Len(t, result.Steps, 4)
	assert.Equal(t, 50.0, result.SuccessRate)
	// 50% meets the default criteria
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
}

func TestRunner_BelowThreshold(t *testing.T) {
	h := newHarness(t)
	criteria, err := CompileCriteria("")
	require.NoError(t, err)

	spec := core.FlowSpec{
		Description: "mostly unknown",
		Steps: []string{
			"User sends message 'one'",
			"Wait", "Pause", "Hold",
		},
	}.Normalized()

	result := h.runner.Run(context.Background(), spec, engineActor, criteria, false)
	assert.Equal(t, 25.0, result.SuccessRate)
	assert.False(t, result.Success)
}

func TestRunner_MissingPhone(t *testing.T) {
	h := newHarness(t)
	criteria, _ := CompileCriteria("")

	result := h.runner.Run(context.Background(),
		core.FlowSpec{Description: "d", Steps: []string{"User sends message 'x'"}}.Normalized(),
		core.Actor{Name: "Ghost"}, criteria, false)

	assert.False(t, result.Success)
	assert.Equal(t, "actor phone number is required for Ghost", result.Error)
	assert.Empty(t, result.Steps)
	assert.Empty(t, h.collab.posted())
}

func TestRunner_MultiActorStopMessage(t *testing.T) {
	h := newHarness(t)
	criteria, _ := CompileCriteria("")

	spec := core.FlowSpec{
		Description: "multi",
		Steps:       []string{"User sends message 'hello'"},
	}.Normalized()

	h.runner.Run(context.Background(), spec, engineActor, criteria, true)

	posted := h.collab.posted()
	require.Len(t, posted, 2)
	assert.Equal(t, "Stop", gjson.Get(posted[0], "entry.0.changes.0.value.messages.0.text.body").String())
	// the flow step replies to the stop response
	assert.Equal(t, "wamid.resp", gjson.Get(posted[1], "entry.0.changes.0.value.messages.0.context.id").String())
}

func TestEngine_Run(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("invalid flow aborts before any traffic", func(t *testing.T) {
		_, err := h.engine.Run(ctx, core.FlowSpec{}, []core.Actor{engineActor})
		var cfgErr *core.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Empty(t, h.collab.posted())
	})

	t.Run("invalid criteria aborts", func(t *testing.T) {
		spec := core.FlowSpec{
			Description:     "d",
			Steps:           []string{"User sends message 'x'"},
			SuccessCriteria: "success_rate >>",
		}
		_, err := h.engine.Run(ctx, spec, []core.Actor{engineActor})
		var cfgErr *core.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("actors run in order with the inter-actor delay", func(t *testing.T) {
		spec := core.FlowSpec{
			Description: "two actors",
			Steps:       []string{"User sends message 'hi'"},
		}
		actors := []core.Actor{
			{Phone: "911111111111", Name: "A"},
			{Phone: "922222222222", Name: "B"},
		}

		result, err := h.engine.Run(ctx, spec, actors)
		require.NoError(t, err)
		require.Len(t, result.Results, 2)
		assert.Equal(t, "A", result.Results[0].Actor.Name)
		assert.Equal(t, "B", result.Results[1].Actor.Name)
		assert.Equal(t, 2, result.SuccessfulActors())

		// per actor: stop message (3s settle + 2s response), the flow
		// step (3s settle + 2s response + 1s step delay); the 2s
		// actor delay sits between the two actors.
		perActor := []time.Duration{
			3 * time.Second, 2 * time.Second,
			3 * time.Second, 2 * time.Second, time.Second,
		}
		want := append(append([]time.Duration{}, perActor...), 2*time.Second)
		want = append(want, perActor...)
		assert.Equal(t, want, h.clock.Sleeps())
	})
}

func TestEngine_CustomCriteria(t *testing.T) {
	h := newHarness(t)

	spec := core.FlowSpec{
		Description:     "strict",
		Steps:           []string{"User sends message 'one'", "Wait"},
		SuccessCriteria: "success_rate == 100",
	}

	result, err := h.engine.Run(context.Background(), spec, []core.Actor{engineActor})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	// 50% fails the strict criteria even though it meets the default
	assert.Equal(t, 50.0, result.Results[0].SuccessRate)
	assert.False(t, result.Results[0].Success)
}
