package common

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/inboxmcp/internal/instrumentation"
	"github.com/teemow/inboxmcp/internal/logging"
	"github.com/teemow/inboxmcp/internal/server"
	"github.com/teemow/inboxmcp/internal/tools"
)

// Instrumented returns registry middleware that wraps every tool call in a
// tool span, records invocation metrics and writes one audit record.
// Operational failures count as errors even though the client receives a
// normal text result.
//
// Usage:
//
//	reg.Use(common.Instrumented(sc))
func Instrumented(sc *server.ServerContext) tools.Middleware {
	return func(toolName string, next tools.Handler) tools.Handler {
		return func(ctx context.Context, args tools.Arguments) tools.Result {
			metrics := sc.Metrics()
			auditLogger := sc.AuditLogger()
			logger := logging.WithTool(sc.Logger(), toolName)

			ctx, span := instrumentation.StartToolSpan(ctx, toolName)
			defer span.End()

			start := time.Now()
			invocation := instrumentation.NewToolInvocation(toolName).
				WithSpanContext(ctx)
			logger.Debug("tool call started", logging.KeyInvocation, invocation.InvocationID)

			result := next(ctx, args)
			duration := time.Since(start)

			status := instrumentation.StatusSuccess
			if result.Failed() {
				failure := result.Failure()
				status = instrumentation.StatusError
				invocation.CompleteWithFailure(failure.Action, failure.Err)
				span.SetAttributes(attribute.String(instrumentation.SpanAttrFailureAction, failure.Action))
				instrumentation.SetSpanError(span, failure)
				if metrics != nil {
					metrics.RecordToolFailure(ctx, toolName, failure.Action)
				}
			} else {
				invocation.CompleteSuccess()
				instrumentation.SetSpanSuccess(span)
			}

			span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, status))

			if metrics != nil {
				metrics.RecordToolInvocation(ctx, toolName, status, duration)
			}
			auditLogger.LogToolInvocation(ctx, invocation)

			logger.Debug("tool call finished",
				logging.KeyInvocation, invocation.InvocationID,
				logging.Status(status),
				logging.KeyDuration, duration,
			)
			return result
		}
	}
}
