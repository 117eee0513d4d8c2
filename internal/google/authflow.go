package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultListenAddr binds the callback listener to an ephemeral loopback port.
	DefaultListenAddr = "127.0.0.1:0"

	// CallbackPath is the path the authorization server redirects to.
	CallbackPath = "/oauth2/callback"
)

const successPage = `<!DOCTYPE html>
<html><head><title>inboxmcp</title></head>
<body><p>Authorization complete. You may close this window.</p></body></html>
`

// Authorizer obtains a fresh token through an interactive flow.
type Authorizer interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// LoopbackAuthorizer runs the installed-application flow: it listens on a
// loopback address, asks the user to open the consent URL, and exchanges the
// code delivered to the callback (RFC 8252, with PKCE).
type LoopbackAuthorizer struct {
	// ListenAddr is the callback listener address (default: DefaultListenAddr).
	ListenAddr string

	// Prompt is called with the consent URL. The default writes it to Output.
	Prompt func(authURL string)

	// Output receives the default prompt (default: os.Stderr, never stdout,
	// which carries the MCP stream).
	Output io.Writer

	Logger *slog.Logger
}

type callbackResult struct {
	code string
	err  error
}

// Authorize blocks until the callback is received or ctx is done.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	addr := a.ListenAddr
	if addr == "" {
		addr = DefaultListenAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	c := *conf
	c.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), CallbackPath)

	state, err := GenerateState()
	if err != nil {
		ln.Close()
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	authURL := c.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		res := parseCallback(r, state)
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, successPage)
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger().Warn("callback listener stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger().Info("waiting for authorization callback", "redirect_url", c.RedirectURL)
	a.prompt(authURL)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := c.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	}
}

func parseCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()
	switch {
	case q.Get("state") != state:
		return callbackResult{err: errors.New("state mismatch in authorization callback")}
	case q.Get("error") != "":
		return callbackResult{err: fmt.Errorf("authorization denied: %s", q.Get("error"))}
	case q.Get("code") == "":
		return callbackResult{err: errors.New("authorization callback carried no code")}
	}
	return callbackResult{code: q.Get("code")}
}

func (a *LoopbackAuthorizer) prompt(authURL string) {
	if a.Prompt != nil {
		a.Prompt(authURL)
		return
	}
	out := a.Output
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "Open the following URL in your browser to authorize Gmail access:\n\n  %s\n\n", authURL)
}

func (a *LoopbackAuthorizer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
