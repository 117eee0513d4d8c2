package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxmcp/internal/google"
	"github.com/teemow/inboxmcp/internal/instrumentation"
	"github.com/teemow/inboxmcp/internal/logging"
	"github.com/teemow/inboxmcp/internal/server"
	"github.com/teemow/inboxmcp/internal/tools"
	"github.com/teemow/inboxmcp/internal/tools/common"
	"github.com/teemow/inboxmcp/internal/tools/gmail_tools"
	"github.com/teemow/inboxmcp/internal/tools/greeting_tools"
)

// serverName is the implementation name reported in the MCP handshake.
const serverName = "inboxmcp"

// shutdownTimeout bounds the flush of telemetry and the metrics server.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdin/stdout.

Tools:
  - hello: returns a greeting
  - send_email: sends a plain-text email from the authenticated account
  - read_emails: summarises the most recent inbox messages
  - search_emails, read_email: only with --extended-tools

Credentials:
  The OAuth token is read from --token-file and refreshed when it expires.
  When no usable token exists the consent URL is printed to stderr and the
  browser redirect is received on --auth-listen-addr. Run "inboxmcp auth"
  beforehand to do this outside of a tool call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runServe(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
		},
	}

	addServeFlags(cmd.Flags())

	return cmd
}

// runServe serves MCP on in/out until in is closed or ctx is done. Logs and
// stdout telemetry exporters write to errOut.
func runServe(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	logger, err := logging.NewLogger(errOut, cfg.Debug, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.StdoutWriter = errOut

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var (
		metrics     *instrumentation.Metrics
		auditLogger *instrumentation.AuditLogger
	)
	if provider.Enabled() {
		metrics = provider.Metrics()
		auditLogger = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}

	store := newCredentialStore(cfg, logger, metrics)

	serverContext, err := server.NewServerContext(ctx, server.Config{
		Credentials:      store,
		Metrics:          metrics,
		AuditLogger:      auditLogger,
		Logger:           logger,
		FetchConcurrency: cfg.FetchConcurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	reg, err := buildRegistry(serverContext, cfg, logger)
	if err != nil {
		return err
	}

	mcpSrv, err := server.NewMCPServer(serverName, version, reg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if cfg.MetricsEnabled {
		metricsServer, err := startMetricsServer(cfg, provider, serverContext, store.TokenPath(), logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	logger.Info("starting MCP server on stdio",
		"version", version,
		"tools", len(reg.ListTools()),
		"strict_args", cfg.StrictArgs,
		logging.Path(store.TokenPath()))

	return server.ServeStdio(serverContext.Context(), mcpSrv, in, out, logger)
}

// newLogger builds the stderr logger used outside of runServe.
func newLogger(cfg Config) (*slog.Logger, error) {
	return logging.NewLogger(os.Stderr, cfg.Debug, cfg.LogFormat)
}

func newCredentialStore(cfg Config, logger *slog.Logger, metrics *instrumentation.Metrics) *google.CredentialStore {
	opts := []google.Option{
		google.WithLogger(logger),
		google.WithAuthorizer(&google.LoopbackAuthorizer{
			ListenAddr: cfg.AuthListenAddr,
			Logger:     logger,
		}),
	}
	if metrics != nil {
		opts = append(opts, google.WithMetrics(metrics))
	}
	return google.NewCredentialStore(cfg.TokenFile, cfg.CredentialsFile, opts...)
}

// buildRegistry assembles the tool catalog served by the MCP server and
// documented by generate-docs.
func buildRegistry(sc *server.ServerContext, cfg Config, logger *slog.Logger) (*tools.Registry, error) {
	reg := tools.NewRegistry(
		tools.WithStrictArguments(cfg.StrictArgs),
		tools.WithLogger(logger),
	)
	reg.Use(common.Instrumented(sc))

	if err := greeting_tools.RegisterGreetingTools(reg); err != nil {
		return nil, fmt.Errorf("failed to register greeting tools: %w", err)
	}
	if err := gmail_tools.RegisterGmailTools(reg, sc, cfg.ExtendedTools); err != nil {
		return nil, fmt.Errorf("failed to register Gmail tools: %w", err)
	}
	return reg, nil
}

func startMetricsServer(cfg Config, provider *instrumentation.Provider, sc *server.ServerContext, tokenPath string, logger *slog.Logger) (*server.MetricsServer, error) {
	health := server.NewHealthChecker(sc)
	health.AddCheck("token", tokenFileCheck(tokenPath))

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.MetricsAddr,
		InstrumentationProvider: provider,
		Health:                  health,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", metricsServer.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to bind metrics server to %s: %w", metricsServer.Addr(), err)
	}

	go func() {
		if err := metricsServer.Serve(ln); err != nil {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	return metricsServer, nil
}

// tokenFileCheck reports not ready until a token has been persisted.
func tokenFileCheck(path string) server.HealthCheck {
	return func() error {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("token file unavailable: %w", err)
		}
		return nil
	}
}
