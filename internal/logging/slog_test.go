package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, false, FormatText)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible", Tool("hello"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "tool=hello")
}

func TestNewLogger_JSONDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, true, "JSON")
	require.NoError(t, err)

	logger.Debug("refreshing", Operation("token.refresh"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "refreshing", entry["msg"])
	assert.Equal(t, "token.refresh", entry[KeyOperation])
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, false, "xml")
	assert.Error(t, err)
}

func TestWithTool(t *testing.T) {
	var buf bytes.Buffer
	logger := WithTool(slog.New(slog.NewTextHandler(&buf, nil)), "send_email")
	logger.Info("done")
	assert.Contains(t, buf.String(), "tool=send_email")
}

func TestWithOperation(t *testing.T) {
	result := WithOperation(slog.Default(), "gmail.list")
	assert.NotNil(t, result)
}

func TestAttrs(t *testing.T) {
	assert.Equal(t, KeyOperation, Operation("x").Key)
	assert.Equal(t, KeyTool, Tool("x").Key)
	assert.Equal(t, KeyStatus, Status(StatusSuccess).Key)
	assert.Equal(t, KeyPath, Path("token.json").Key)
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("nil error", Err(nil))
	assert.False(t, strings.Contains(buf.String(), "error="), "nil error should be omitted: %s", buf.String())
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	assert.Equal(t, "[token:5 chars]", SanitizeToken("ya29."))
}

func TestRedactRecipients(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single", "ada@example.com", "example.com"},
		{"multiple", "ada@example.com, bob@example.org", "example.com,example.org"},
		{"display name", "Ada <ada@example.com>", "example.com"},
		{"no at sign", "nobody", "unknown"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactRecipients(tt.input))
		})
	}
}
