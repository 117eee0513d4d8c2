package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        name,
			Description: "echoes its message",
			InputSchema: ObjectSchema(map[string]Property{
				"message": {Type: TypeString, Description: "Text to echo"},
				"count":   {Type: TypeInteger, Description: "Repeat count", Default: 1},
			}, "message"),
		},
		Handler: func(_ context.Context, args Arguments) Result {
			return TextResult("echo: " + args.String("message"))
		},
	}
}

func failingTool(name string) Tool {
	return Tool{
		Descriptor: Descriptor{Name: name, Description: "always fails", InputSchema: ObjectSchema(nil)},
		Handler: func(context.Context, Arguments) Result {
			return FailureResult("doing things", errors.New("backend unavailable"))
		},
	}
}

func TestRegistry_ListToolsSortedAndIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("zeta"), echoTool("alpha"), failingTool("mid")))

	first := r.ListTools()
	second := r.ListTools()

	names := make([]string, 0, len(first))
	for _, d := range first {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	assert.Equal(t, first, second)
}

func TestRegistry_ListToolsReturnsCopies(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	listed := r.ListTools()
	listed[0].InputSchema.Properties["injected"] = Property{Type: TypeString}
	listed[0].InputSchema.Required[0] = "tampered"

	again := r.ListTools()
	assert.NotContains(t, again[0].InputSchema.Properties, "injected")
	assert.Equal(t, []string{"message"}, again[0].InputSchema.Required)
}

func TestRegistry_RegisterRejectsDuplicatesAndInvalid(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	assert.Error(t, r.Register(echoTool("echo")))
	assert.Error(t, r.Register(Tool{Descriptor: Descriptor{Name: "nohandler", InputSchema: ObjectSchema(nil)}}))
	assert.Error(t, r.Register(Tool{Handler: echoTool("x").Handler}))

	bad := echoTool("bad")
	bad.InputSchema.Type = "not-a-type"
	assert.Error(t, r.Register(bad))
}

func TestRegistry_CallTool(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo"), failingTool("fail")))

	blocks, err := r.CallTool(context.Background(), "echo", map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, []Block{{Text: "echo: hi"}}, blocks)

	blocks, err = r.CallTool(context.Background(), "fail", nil)
	require.NoError(t, err, "operational failures are not protocol errors")
	assert.Equal(t, []Block{{Text: "Error doing things: backend unavailable"}}, blocks)
}

func TestRegistry_UnknownTool(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	blocks, err := r.CallTool(context.Background(), "unknown_tool", map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Contains(t, err.Error(), "unknown_tool")
	assert.Nil(t, blocks)
}

func TestRegistry_PermissiveByDefault(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	blocks, err := r.CallTool(context.Background(), "echo", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "echo: ", blocks[0].Text)
}

func TestRegistry_StrictArguments(t *testing.T) {
	r := NewRegistry(WithStrictArguments(true))
	require.NoError(t, r.Register(echoTool("echo")))

	tests := []struct {
		name    string
		args    map[string]any
		wantErr string
	}{
		{name: "missing required", args: map[string]any{}, wantErr: "message"},
		{name: "nil arguments", args: nil, wantErr: "message"},
		{name: "wrong type", args: map[string]any{"message": 42.0}, wantErr: "message"},
		{name: "fractional integer", args: map[string]any{"message": "m", "count": 1.5}, wantErr: "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Invoke(context.Background(), "echo", tt.args)
			require.NoError(t, err)
			require.True(t, res.Failed())
			assert.Equal(t, ActionValidatingArguments, res.Failure().Action)
			assert.Contains(t, res.Failure().Err.Error(), tt.wantErr)

			blocks := res.Render()
			require.Len(t, blocks, 1)
			assert.Contains(t, blocks[0].Text, "Error validating arguments: ")
		})
	}

	blocks, err := r.CallTool(context.Background(), "echo", map[string]any{"message": "ok", "count": 2.0})
	require.NoError(t, err)
	assert.Equal(t, "echo: ok", blocks[0].Text)
}

func TestRegistry_MiddlewareOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	var order []string
	trace := func(label string) Middleware {
		return func(tool string, next Handler) Handler {
			return func(ctx context.Context, args Arguments) Result {
				order = append(order, label+":"+tool)
				return next(ctx, args)
			}
		}
	}
	r.Use(trace("outer"), trace("inner"))

	_, err := r.CallTool(context.Background(), "echo", map[string]any{"message": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:echo", "inner:echo"}, order)

	order = nil
	_, err = r.CallTool(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Empty(t, order, "middleware must not run for unknown tools")
}
