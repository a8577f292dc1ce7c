package logging

// FlowLogger wraps a Logger adding cloneable contextual attributes and
// domain convenience methods. It is cheap to copy via the With* methods;
// the zero-value-safe constructor substitutes a NoOpLogger for nil.
type FlowLogger struct {
	logger Logger
	attrs  []any
}

// NewFlowLogger wraps the given Logger. A nil logger yields a silent
// FlowLogger.
func NewFlowLogger(logger Logger) *FlowLogger {
	if logger == nil {
		logger = NoOpLogger{}
	}
	return &FlowLogger{logger: logger}
}

func (l *FlowLogger) with(args ...any) *FlowLogger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return &FlowLogger{logger: l.logger, attrs: attrs}
}

// WithFlow attaches the flow trigger/name to every subsequent entry.
func (l *FlowLogger) WithFlow(name string) *FlowLogger {
	return l.with("flow", name)
}

// WithActor attaches actor identity to every subsequent entry.
func (l *FlowLogger) WithActor(name, phone string) *FlowLogger {
	return l.with("actor", name, "phone", phone)
}

// Debug logs at debug level with the accumulated context attributes.
func (l *FlowLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, append(append([]any{}, l.attrs...), args...)...)
}

// Info logs at info level with the accumulated context attributes.
func (l *FlowLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, append(append([]any{}, l.attrs...), args...)...)
}

// Warn logs at warn level with the accumulated context attributes.
func (l *FlowLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, append(append([]any{}, l.attrs...), args...)...)
}

// Error logs at error level with the accumulated context attributes.
func (l *FlowLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, append(append([]any{}, l.attrs...), args...)...)
}

// StepStart records the beginning of a flow step.
func (l *FlowLogger) StepStart(index int, step string) {
	l.Debug("step.start", "step_index", index, "step", step)
}

// StepResult records the outcome of a flow step.
func (l *FlowLogger) StepResult(index int, tool string, success bool, errMsg string) {
	if success {
		l.Info("step.success", "step_index", index, "tool", tool)
		return
	}
	l.Warn("step.failed", "step_index", index, "tool", tool, "error", errMsg)
}

// ToolSend records an outbound delivery attempt.
func (l *FlowLogger) ToolSend(tool string, status int) {
	l.Debug("tool.send", "tool", tool, "status", status)
}

// Fallback records that a model-backed component fell back to rules.
func (l *FlowLogger) Fallback(component string, err error) {
	l.Warn("fallback", "component", component, "error", err.Error())
}
