package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ToolInvocation captures one tool call for audit logging.
//
// Arguments are never recorded: they carry recipients, subjects and bodies.
type ToolInvocation struct {
	// InvocationID correlates the audit record with debug logs of the same call.
	InvocationID string

	Tool string

	// FailureAction is the action of an operational failure ("reading emails").
	FailureAction string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string

	now func() time.Time
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete when the tool finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return newToolInvocation(tool, time.Now)
}

func newToolInvocation(tool string, now func() time.Time) *ToolInvocation {
	return &ToolInvocation{
		InvocationID: uuid.NewString(),
		Tool:         tool,
		StartTime:    now(),
		now:          now,
	}
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.complete(true, "", nil)
}

// CompleteWithFailure marks the invocation as failed while performing action.
func (ti *ToolInvocation) CompleteWithFailure(action string, err error) *ToolInvocation {
	return ti.complete(false, action, err)
}

func (ti *ToolInvocation) complete(success bool, action string, err error) *ToolInvocation {
	now := ti.now
	if now == nil {
		now = time.Now
	}
	ti.Duration = now().Sub(ti.StartTime)
	ti.Success = success
	ti.FailureAction = action
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// LogAttrs returns slog attributes for structured logging. Error is only
// included when includeError is set.
func (ti *ToolInvocation) LogAttrs(includeError bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("invocation_id", ti.InvocationID),
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.FailureAction != "" {
		attrs = append(attrs, slog.String("action", ti.FailureAction))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if includeError && ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for tool invocations.
// A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger        *slog.Logger
	enabled       bool
	includeErrors bool
}

// NewAuditLogger creates an enabled AuditLogger that includes error messages.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, IncludeErrors: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:        logger.With("component", "audit"),
		enabled:       config.Enabled,
		includeErrors: config.IncludeErrors,
	}
}

// Enabled reports whether records are written.
func (al *AuditLogger) Enabled() bool {
	return al != nil && al.enabled
}

// LogToolInvocation writes one record per invocation: tool_executed on
// success, tool_failed otherwise.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if !al.Enabled() {
		return
	}

	if ti.Success {
		al.logger.LogAttrs(ctx, slog.LevelInfo, "tool_executed", ti.LogAttrs(al.includeErrors)...)
	} else {
		al.logger.LogAttrs(ctx, slog.LevelWarn, "tool_failed", ti.LogAttrs(al.includeErrors)...)
	}
}
