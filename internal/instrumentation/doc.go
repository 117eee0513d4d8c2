// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the inboxmcp server.
//
// # Metrics
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Gmail operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Gmail operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of interactive authorizations by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//   - mcp_tool_failures_total: Counter of operational failures by tool and action
//
// Metrics are exported through the default Prometheus registry (scraped from
// the optional metrics server), OTLP, or the "stdout" exporter, which writes
// to stderr because stdout carries the MCP stream.
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and Google API calls
// (google.<service>.<operation>). Tracing is off unless TRACING_EXPORTER is set.
//
// # Configuration
//
// DefaultConfig reads:
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: inboxmcp), OTEL_SERVICE_INSTANCE_ID
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_ERRORS (default: true)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "read_emails", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
