package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/teemow/inboxmcp/internal/gmail"
	"github.com/teemow/inboxmcp/internal/instrumentation"
)

// DefaultFetchConcurrency keeps per-message header fetches sequential.
const DefaultFetchConcurrency = 1

// SessionProvider returns an HTTP client authenticated for the Gmail API.
// google.CredentialStore implements it.
type SessionProvider interface {
	Session(ctx context.Context) (*http.Client, error)
}

// MailboxFactory builds a Mailbox from an authenticated HTTP client.
type MailboxFactory func(ctx context.Context, httpClient *http.Client) (gmail.Mailbox, error)

// Config holds the dependencies of a ServerContext.
type Config struct {
	// Credentials is required for any Gmail tool.
	Credentials SessionProvider

	// NewMailbox defaults to a gmail.Client.
	NewMailbox MailboxFactory

	// Metrics and AuditLogger are optional.
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger

	Logger *slog.Logger

	// FetchConcurrency bounds parallel Gmail calls within one tool call.
	FetchConcurrency int
}

// ServerContext holds the dependencies shared by all tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	credentials      SessionProvider
	newMailbox       MailboxFactory
	metrics          *instrumentation.Metrics
	auditLogger      *instrumentation.AuditLogger
	logger           *slog.Logger
	fetchConcurrency int

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg Config) (*ServerContext, error) {
	if cfg.FetchConcurrency < 0 {
		return nil, fmt.Errorf("fetch concurrency must not be negative, got %d", cfg.FetchConcurrency)
	}
	if cfg.FetchConcurrency == 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:              shutdownCtx,
		cancel:           cancel,
		credentials:      cfg.Credentials,
		newMailbox:       cfg.NewMailbox,
		metrics:          cfg.Metrics,
		auditLogger:      cfg.AuditLogger,
		logger:           cfg.Logger,
		fetchConcurrency: cfg.FetchConcurrency,
	}
	if sc.newMailbox == nil {
		sc.newMailbox = sc.defaultMailbox
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Mailbox resolves credentials and returns a Mailbox bound to them. Errors
// from the credential lifecycle, such as google.ErrMissingCredentials, are
// returned unchanged so callers can match them with errors.Is.
func (sc *ServerContext) Mailbox(ctx context.Context) (gmail.Mailbox, error) {
	if sc.IsShutdown() {
		return nil, errors.New("server is shutting down")
	}
	if sc.credentials == nil {
		return nil, errors.New("no credential store configured")
	}

	httpClient, err := sc.credentials.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sc.newMailbox(ctx, httpClient)
}

func (sc *ServerContext) defaultMailbox(ctx context.Context, httpClient *http.Client) (gmail.Mailbox, error) {
	cfg := gmail.Config{
		HTTPClient: httpClient,
		Logger:     sc.logger,
	}
	if sc.metrics != nil {
		cfg.Recorder = sc.metrics
	}
	return gmail.NewClient(ctx, cfg)
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// FetchConcurrency returns the fan-out limit for per-message Gmail calls.
func (sc *ServerContext) FetchConcurrency() int {
	return sc.fetchConcurrency
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
