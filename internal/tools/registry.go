package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/teemow/inboxmcp/internal/logging"
)

// ErrUnknownTool is returned by CallTool for a name no tool is registered under.
var ErrUnknownTool = errors.New("unknown tool")

// ActionValidatingArguments is the Failure action of a rejected argument set.
const ActionValidatingArguments = "validating arguments"

// Descriptor describes a tool to MCP clients.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// Handler executes a tool call.
type Handler func(ctx context.Context, args Arguments) Result

// Middleware wraps the handler of the named tool.
type Middleware func(tool string, next Handler) Handler

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor
	Handler Handler
}

type entry struct {
	desc    Descriptor
	handler Handler
	schema  *gojsonschema.Schema
}

// Registry maps tool names to descriptors and handlers. It is both the catalog
// served by tools/list and the dispatcher behind tools/call, so the two cannot
// disagree.
type Registry struct {
	strict bool
	logger *slog.Logger

	mu         sync.RWMutex
	entries    map[string]*entry
	middleware []Middleware
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrictArguments validates every call's arguments against the tool's
// input schema, including required parameters, before dispatch.
func WithStrictArguments(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:  slog.Default(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds tools. The input schema of each tool is compiled here, so a
// malformed schema fails at startup rather than on the first call.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		if t.Name == "" {
			return errors.New("tool name is required")
		}
		if t.Handler == nil {
			return fmt.Errorf("tool %s has no handler", t.Name)
		}
		if _, exists := r.entries[t.Name]; exists {
			return fmt.Errorf("tool %s is already registered", t.Name)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.InputSchema))
		if err != nil {
			return fmt.Errorf("invalid input schema for tool %s: %w", t.Name, err)
		}

		desc := t.Descriptor
		desc.InputSchema = t.InputSchema.clone()
		r.entries[t.Name] = &entry{desc: desc, handler: t.Handler, schema: schema}
	}
	return nil
}

// Use appends middleware. The first middleware added is the outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// ListTools returns the descriptors of all registered tools sorted by name.
func (r *Registry) ListTools() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		d := e.desc
		d.InputSchema = e.desc.InputSchema.clone()
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CallTool dispatches a call to the named tool and renders its result.
// Operational failures are rendered into the returned blocks; only an
// unknown tool name yields an error.
func (r *Registry) CallTool(ctx context.Context, name string, args map[string]any) ([]Block, error) {
	res, err := r.Invoke(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return res.Render(), nil
}

// Invoke is like CallTool but returns the typed Result.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (Result, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	middleware := r.middleware
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("call to unknown tool", logging.Tool(name))
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}

	h := e.handler
	if r.strict {
		h = validating(e.schema, h)
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](name, h)
	}
	return h(ctx, Arguments(args)), nil
}

func validating(schema *gojsonschema.Schema, next Handler) Handler {
	return func(ctx context.Context, args Arguments) Result {
		res, err := schema.Validate(gojsonschema.NewGoLoader(map[string]any(args)))
		if err != nil {
			return FailureResult(ActionValidatingArguments, err)
		}
		if !res.Valid() {
			msgs := make([]string, 0, len(res.Errors()))
			for _, e := range res.Errors() {
				msgs = append(msgs, e.String())
			}
			return FailureResult(ActionValidatingArguments, errors.New(strings.Join(msgs, "; ")))
		}
		return next(ctx, args)
	}
}
