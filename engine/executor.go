package engine

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/flowprobe/flowprobe/classifier"
	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/response"
	"github.com/flowprobe/flowprobe/tool"
)

// StepExecutor runs one flow step through its state machine:
// classify, resolve a sender, dispatch, await the response. Every failure
// terminates the step immediately and is recorded in the outcome; nothing
// raised here escapes to the caller.
type StepExecutor struct {
	classifier    classifier.Classifier
	registry      *tool.Registry
	reader        *response.Reader
	clock         core.Clock
	logger        *logging.FlowLogger
	responseDelay time.Duration
}

// NewStepExecutor constructs a StepExecutor.
func NewStepExecutor(
	cls classifier.Classifier,
	registry *tool.Registry,
	reader *response.Reader,
	clock core.Clock,
	logger *logging.FlowLogger,
	responseDelay time.Duration,
) *StepExecutor {
	return &StepExecutor{
		classifier:    cls,
		registry:      registry,
		reader:        reader,
		clock:         clock,
		logger:        logger,
		responseDelay: responseDelay,
	}
}

// Execute runs one step for the actor, reading and updating the actor's
// ExecutionContext reply anchor. The returned outcome always has
// StepIndex and StepText populated.
func (e *StepExecutor) Execute(
	ctx context.Context,
	stepIndex int,
	stepText string,
	actor core.Actor,
	execCtx *core.ExecutionContext,
) core.StepOutcome {
	e.logger.StepStart(stepIndex, stepText)

	fail := func(toolID core.ToolType, msg string) core.StepOutcome {
		e.logger.StepResult(stepIndex, string(toolID), false, msg)
		return core.StepOutcome{
			StepIndex: stepIndex,
			StepText:  stepText,
			Tool:      toolID,
			Success:   false,
			Error:     msg,
			Timestamp: e.clock.Now(),
		}
	}

	call := e.classifier.Classify(ctx, stepText, &actor)
	if call.Tool == core.ToolUnknown {
		return fail(core.ToolUnknown, "Unknown tool type")
	}

	sender, err := e.registry.Create(call.Tool)
	if err != nil {
		return fail(call.Tool, fmt.Sprintf("Failed to create tool: %s", call.Tool))
	}

	params := make(map[string]any, len(call.Parameters)+3)
	for k, v := range call.Parameters {
		params[k] = v
	}

	if call.Tool.IsMedia() {
		if msg, ok := e.uploadMedia(ctx, sender, call, params); !ok {
			return fail(call.Tool, msg)
		}
	}

	env, err := sender.BuildEnvelope(actor, params, execCtx.LastMessageID)
	if err != nil {
		return fail(call.Tool, err.Error())
	}

	outcome := sender.Deliver(ctx, env)
	e.logger.ToolSend(string(call.Tool), outcome.StatusCode)
	if outcome.StatusCode != http.StatusOK {
		return fail(call.Tool, fmt.Sprintf("Tool execution failed with status %d", outcome.StatusCode))
	}

	// Absence of a response is not a failure; the step succeeded once
	// delivery was accepted.
	respData := e.awaitResponse(ctx, call.Tool, execCtx)

	e.logger.StepResult(stepIndex, string(call.Tool), true, "")
	return core.StepOutcome{
		StepIndex: stepIndex,
		StepText:  stepText,
		Tool:      call.Tool,
		Success:   true,
		Response:  respData,
		Timestamp: e.clock.Now(),
	}
}

// uploadMedia checks the referenced file and performs the upload,
// injecting the media reference into params. It returns a failure message
// when the step must terminate.
func (e *StepExecutor) uploadMedia(
	ctx context.Context,
	sender tool.Sender,
	call core.ToolCall,
	params map[string]any,
) (string, bool) {
	pathKey := "image_path"
	family := "image"
	if call.Tool == core.ToolVoice {
		pathKey = "voice_path"
		family = "voice"
	}

	path := call.StringParam(pathKey)
	if path == "" {
		return fmt.Sprintf("%s file not found: %s", family, path), false
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("%s file not found: %s", family, path), false
	}

	media, ok := sender.(tool.MediaSender)
	if !ok {
		return fmt.Sprintf("Failed to create tool: %s", call.Tool), false
	}

	ref, err := media.Upload(ctx, path)
	if err != nil || ref.ID == "" {
		return fmt.Sprintf("Failed to upload %s", family), false
	}

	params["media_id"] = ref.ID
	params["mime_type"] = ref.MimeType
	params["sha256"] = ref.SHA256
	return "", true
}

// awaitResponse waits the settling delay, fetches the latest message, and
// shapes it per tool family: media tools get the processed-data
// extraction, everything else the raw message. It also advances the
// reply-chain anchor when the response carries a message id.
func (e *StepExecutor) awaitResponse(
	ctx context.Context,
	toolID core.ToolType,
	execCtx *core.ExecutionContext,
) map[string]any {
	e.clock.Sleep(ctx, e.responseDelay)

	msg := e.reader.FetchLatest(ctx)
	if msg == nil {
		return nil
	}

	execCtx.Observe(msg.ID())

	if toolID.IsMedia() {
		if data, ok := response.ExtractProcessedData(msg); ok {
			return data.Map()
		}
		return nil
	}
	return msg.Map()
}
