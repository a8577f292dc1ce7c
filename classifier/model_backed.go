package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/flowprobe/flowprobe/core"
	"github.com/flowprobe/flowprobe/logging"
	"github.com/flowprobe/flowprobe/model"
)

const classifySystemPrompt = "You are a WhatsApp flow analyzer. Return only valid JSON. " +
	"Support text, location, image, and voice tools."

const classifyPromptTemplate = `Analyze this WhatsApp flow step and determine the tool and parameters:

Step: %s%s

IMPORTANT RULES:
- For text messages, extract ONLY the actual message text in quotes
- For voice messages, look for audio file paths or voice indicators
- Do NOT add employee names to message body unless specifically asked
- Keep messages simple and direct

Return JSON format:
{
    "tool": "send_text" | "send_location" | "send_image" | "send_voice",
    "parameters": {
        "body": "exact text from quotes only" (for send_text),
        "latitude": number, "longitude": number (for send_location),
        "caption": "image description", "image_path": "path/to/image" (for send_image),
        "voice_path": "path to voice file" (for send_voice)
    }
}

Examples:
- "User sends message 'Hello'" -> {"tool": "send_text", "parameters": {"body": "Hello"}}
- "User sends voice message 'voice.wav'" -> {"tool": "send_voice", "parameters": {"voice_path": "voice.wav"}}
- "User sends location" -> {"tool": "send_location", "parameters": {"latitude": 16.5423, "longitude": 81.4969}}`

const countSystemPrompt = "Extract user count from flow description. Return only number."

const countPromptTemplate = `Analyze this WhatsApp flow and extract the number of users/employees:

%s

RULES:
- Look for numbers like "20 users", "10 employees", "50 people", "100 workers"
- If no specific number found, return 1
- Return ONLY the number, nothing else

Examples:
- "Expense flow for 20 users" -> 20
- "10 employees send receipts" -> 10
- "Single user odometer reading" -> 1
- "No user count mentioned" -> 1`

// ModelBacked asks a model.Completer to classify each step and falls back
// to the rule-based classifier whenever the model errors or returns output
// that does not parse. The two stages are explicit so tests can force the
// fallback by injecting a failing Completer.
type ModelBacked struct {
	completer model.Completer
	fallback  *RuleBased
	logger    *logging.FlowLogger
}

// NewModelBacked constructs the model-backed classifier.
func NewModelBacked(completer model.Completer, logger logging.Logger) *ModelBacked {
	return &ModelBacked{
		completer: completer,
		fallback:  NewRuleBased(),
		logger:    logging.NewFlowLogger(logger),
	}
}

// Classify runs the model stage and, on any failure, the rule stage. It
// never returns an error.
func (m *ModelBacked) Classify(ctx context.Context, step string, actor *core.Actor) core.ToolCall {
	call, err := m.tryModel(ctx, step, actor)
	if err != nil {
		m.logger.Fallback("classifier", err)
		return m.fallback.Classify(ctx, step, actor)
	}
	return call
}

func (m *ModelBacked) tryModel(ctx context.Context, step string, actor *core.Actor) (core.ToolCall, error) {
	var contextInfo string
	if actor != nil && actor.Name != "" {
		contextInfo = "\nEmployee Name: " + actor.Name
	}

	raw, err := m.completer.Complete(ctx, classifySystemPrompt,
		fmt.Sprintf(classifyPromptTemplate, step, contextInfo))
	if err != nil {
		return core.ToolCall{}, err
	}

	var call core.ToolCall
	if err := json.Unmarshal([]byte(stripFences(raw)), &call); err != nil {
		return core.ToolCall{}, fmt.Errorf("unparseable model output: %w", err)
	}
	if call.Parameters == nil {
		call.Parameters = map[string]any{}
	}

	// The model guesses file paths; the quoted path in the step text is
	// authoritative, so it overwrites whatever came back.
	switch call.Tool {
	case core.ToolImage:
		if p := ExtractImagePath(step); p != "" {
			call.Parameters["image_path"] = p
		}
	case core.ToolVoice:
		if p := ExtractAudioPath(step); p != "" {
			call.Parameters["voice_path"] = p
		}
	case core.ToolText, core.ToolLocation:
	default:
		return core.ToolCall{}, fmt.Errorf("model returned unknown tool %q", call.Tool)
	}

	return call, nil
}

// EstimateActorCount asks the model for the headcount, clamping to >= 1,
// with the rule-based extraction as the failure path.
func (m *ModelBacked) EstimateActorCount(ctx context.Context, spec core.FlowSpec) int {
	content := fmt.Sprintf("Description: %s\nSteps: %s",
		spec.Description, strings.Join(spec.Steps, " "))

	raw, err := m.completer.Complete(ctx, countSystemPrompt,
		fmt.Sprintf(countPromptTemplate, content))
	if err != nil {
		m.logger.Fallback("actor_count", err)
		return m.fallback.EstimateActorCount(ctx, spec)
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		m.logger.Fallback("actor_count", err)
		return m.fallback.EstimateActorCount(ctx, spec)
	}
	if n < 1 {
		return 1
	}
	return n
}

// stripFences removes a markdown code fence around a JSON object, keeping
// everything between the first '{' and the last '}'.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			return raw[start : end+1]
		}
	}
	return raw
}
