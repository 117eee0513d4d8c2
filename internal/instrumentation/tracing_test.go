package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a global tracer provider backed by a span recorder for
// the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func TestStartSpan(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "test-span", attribute.Int(SpanAttrResultCount, 3))
	if GetTraceID(ctx) == "" || GetSpanID(ctx) == "" {
		t.Error("expected trace and span IDs in context")
	}
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "test-span" {
		t.Errorf("expected span name 'test-span', got %q", ended[0].Name())
	}
	if got := attrMap(ended[0].Attributes())[SpanAttrResultCount]; got != int64(3) {
		t.Errorf("expected result count 3, got %v", got)
	}
	if ended[0].InstrumentationScope().Name != TracerName {
		t.Errorf("expected tracer %q, got %q", TracerName, ended[0].InstrumentationScope().Name)
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartToolSpan(context.Background(), "read_emails")
	span.End()

	s := recorder.Ended()[0]
	if s.Name() != "tool.read_emails" {
		t.Errorf("expected span name 'tool.read_emails', got %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span, got %v", s.SpanKind())
	}
	if got := attrMap(s.Attributes())[SpanAttrTool]; got != "read_emails" {
		t.Errorf("expected tool attribute 'read_emails', got %v", got)
	}
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartGoogleAPISpan(context.Background(), ServiceGmail, OperationSend)
	span.End()

	s := recorder.Ended()[0]
	if s.Name() != "google.gmail.send" {
		t.Errorf("expected span name 'google.gmail.send', got %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span, got %v", s.SpanKind())
	}
	attrs := attrMap(s.Attributes())
	if attrs[SpanAttrService] != ServiceGmail || attrs[SpanAttrOperation] != OperationSend {
		t.Errorf("unexpected attributes %v", attrs)
	}
}

func TestSetSpanStatus(t *testing.T) {
	recorder := recordSpans(t)

	_, failed := StartSpan(context.Background(), "failed")
	SetSpanError(failed, errors.New("quota exceeded"))
	failed.End()

	_, ok := StartSpan(context.Background(), "ok")
	SetSpanError(ok, nil) // nil error leaves the status alone
	SetSpanSuccess(ok)
	AddSpanEvent(ok, "sent", attribute.String(SpanAttrStatus, StatusSuccess))
	ok.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}

	if ended[0].Status().Code != codes.Error || ended[0].Status().Description != "quota exceeded" {
		t.Errorf("unexpected error status %+v", ended[0].Status())
	}
	if len(ended[0].Events()) != 1 {
		t.Errorf("expected the error to be recorded as an event, got %d events", len(ended[0].Events()))
	}

	if ended[1].Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %+v", ended[1].Status())
	}
	if len(ended[1].Events()) != 1 || ended[1].Events()[0].Name != "sent" {
		t.Errorf("expected 'sent' event, got %+v", ended[1].Events())
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	ctx := context.Background()
	if traceID := GetTraceID(ctx); traceID != "" {
		t.Errorf("expected empty trace ID for context without span, got %q", traceID)
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		t.Errorf("expected empty span ID for context without span, got %q", spanID)
	}
}
