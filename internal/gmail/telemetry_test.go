package gmail

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxmcp/internal/instrumentation"
)

func TestClient_ObservesCalls(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	fake := &fakeGmail{messages: []*gmail.Message{
		headerMessage("m1", "a@example.com", "one", "d1"),
		headerMessage("m2", "b@example.com", "two", "d2"),
	}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	c, err := NewClient(context.Background(), Config{
		HTTPClient: srv.Client(),
		Logger:     slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		APIOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/")},
	})
	require.NoError(t, err)

	ids, err := c.ListMessageIDs(context.Background(), ListOptions{MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "google.gmail.list", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int(instrumentation.SpanAttrResultCount, 2))

	assert.Contains(t, logs.String(), `"msg":"gmail api call"`)
	assert.Contains(t, logs.String(), `"operation":"list"`)
	assert.Contains(t, logs.String(), `"status":"success"`)
}
