package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/inboxmcp/internal/instrumentation"
	"github.com/teemow/inboxmcp/internal/logging"
)

const (
	// DefaultTokenFile is the process-relative path of the persisted token blob.
	DefaultTokenFile = "token.json"

	// DefaultCredentialsFile is the process-relative path of the OAuth client-secret file.
	DefaultCredentialsFile = "credentials.json"

	// expiryThreshold treats tokens expiring within this window as expired.
	expiryThreshold = 5 * time.Minute
)

// Span names of the credential lifecycle.
const (
	SpanTokenRefresh  = "oauth.token_refresh"
	SpanAuthorization = "oauth.authorization"
)

// Result values reported to a MetricsRecorder.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// MetricsRecorder receives credential lifecycle events.
type MetricsRecorder interface {
	RecordOAuthAuth(ctx context.Context, result string)
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// storedCredential is the on-disk token blob. The field names follow the
// authorized-user JSON written by Google's client libraries, so blobs produced
// by other tools can be reused.
type storedCredential struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (c *storedCredential) oauth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.Token,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// CredentialStore owns the Google OAuth credential lifecycle for the process.
//
// The token blob is loaded on first use. An expired token is refreshed when a
// refresh token is present; otherwise an interactive authorization is run
// through the configured Authorizer. Every change is persisted back to disk.
//
// The store serialises access to its in-memory state. It does not lock the
// blob on disk: two processes sharing one token path can overwrite each
// other's refreshes.
type CredentialStore struct {
	tokenPath   string
	secretsPath string
	scopes      []string
	now         func() time.Time
	authorizer  Authorizer
	httpClient  *http.Client
	metrics     MetricsRecorder
	logger      *slog.Logger

	mu   sync.Mutex
	cred *storedCredential
}

// Option configures a CredentialStore.
type Option func(*CredentialStore)

// WithClock replaces the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *CredentialStore) {
		s.now = now
	}
}

// WithAuthorizer sets the interactive authorization flow.
func WithAuthorizer(a Authorizer) Option {
	return func(s *CredentialStore) {
		s.authorizer = a
	}
}

// WithHTTPClient sets the HTTP client used for token endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *CredentialStore) {
		s.httpClient = c
	}
}

// WithScopes overrides DefaultOAuthScopes.
func WithScopes(scopes ...string) Option {
	return func(s *CredentialStore) {
		s.scopes = scopes
	}
}

// WithMetrics reports refreshes and authorizations to m.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *CredentialStore) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CredentialStore) {
		s.logger = logger
	}
}

// NewCredentialStore creates a store backed by the token blob at tokenPath.
// secretsPath is only read when a refresh needs client material the blob does
// not carry, or when interactive authorization is required.
func NewCredentialStore(tokenPath, secretsPath string, opts ...Option) *CredentialStore {
	if tokenPath == "" {
		tokenPath = DefaultTokenFile
	}
	if secretsPath == "" {
		secretsPath = DefaultCredentialsFile
	}

	s := &CredentialStore{
		tokenPath:   tokenPath,
		secretsPath: secretsPath,
		scopes:      DefaultOAuthScopes,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authorizer == nil {
		s.authorizer = &LoopbackAuthorizer{Logger: s.logger}
	}
	return s
}

// TokenPath returns the path of the persisted token blob.
func (s *CredentialStore) TokenPath() string {
	return s.tokenPath
}

// Session returns an HTTP client authenticated with a currently valid token.
// Repeated calls are cheap while the token stays valid.
func (s *CredentialStore) Session(ctx context.Context) (*http.Client, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(s.clientContext(ctx), oauth2.StaticTokenSource(tok)), nil
}

// Token returns a currently valid token, loading, refreshing or authorizing as
// needed.
func (s *CredentialStore) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		cred, err := s.load()
		switch {
		case err == nil:
			s.cred = cred
		case errors.Is(err, ErrNoToken):
			s.logger.Debug("no persisted token", logging.Path(s.tokenPath))
		default:
			return nil, err
		}
	}

	if s.cred != nil && s.valid(s.cred) {
		return s.cred.oauth2Token(), nil
	}

	var (
		cred *storedCredential
		err  error
	)
	if s.cred != nil && s.cred.RefreshToken != "" {
		cred, err = s.refresh(ctx, s.cred)
	} else {
		cred, err = s.authorize(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.cred = cred
	if err := s.persist(cred); err != nil {
		return nil, err
	}
	return cred.oauth2Token(), nil
}

func (s *CredentialStore) valid(c *storedCredential) bool {
	return c.Token != "" && !isTokenExpired(c.Expiry, expiryThreshold, s.now())
}

// isTokenExpired reports whether expiry falls within threshold of now.
// A zero expiry never expires.
func isTokenExpired(expiry time.Time, threshold time.Duration, now time.Time) bool {
	if expiry.IsZero() {
		return false
	}
	return now.Add(threshold).After(expiry)
}

func (s *CredentialStore) load() (*storedCredential, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", s.tokenPath, err)
	}

	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.tokenPath, err)
	}
	return &cred, nil
}

func (s *CredentialStore) persist(cred *storedCredential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	dir := filepath.Dir(s.tokenPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.tokenPath); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	s.logger.Debug("persisted token", logging.Path(s.tokenPath))
	return nil
}

func (s *CredentialStore) refresh(ctx context.Context, cred *storedCredential) (*storedCredential, error) {
	conf, err := s.refreshConfig(cred)
	if err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartSpan(ctx, SpanTokenRefresh)
	defer span.End()

	s.logger.Debug("refreshing token", logging.Operation(SpanTokenRefresh))

	src := conf.TokenSource(s.clientContext(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		s.recordRefresh(ctx, ResultFailure)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	s.recordRefresh(ctx, ResultSuccess)

	rotated := tok.RefreshToken != "" && tok.RefreshToken != cred.RefreshToken
	instrumentation.AddSpanEvent(span, "token.refreshed", attribute.Bool("refresh_token_rotated", rotated))
	instrumentation.SetSpanSuccess(span)
	s.logger.Debug("token refreshed",
		logging.Operation(SpanTokenRefresh),
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.Time("expiry", s.expiryOf(tok)))

	next := *cred
	next.Token = tok.AccessToken
	next.Expiry = s.expiryOf(tok)
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	return &next, nil
}

// refreshConfig prefers the client material carried in the blob and falls back
// to the client-secret file.
func (s *CredentialStore) refreshConfig(cred *storedCredential) (*oauth2.Config, error) {
	if cred.ClientID == "" {
		return s.clientConfig()
	}

	tokenURL := cred.TokenURI
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}
	scopes := cred.Scopes
	if len(scopes) == 0 {
		scopes = s.scopes
	}
	return &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  google.Endpoint.AuthURL,
			TokenURL: tokenURL,
		},
		Scopes: scopes,
	}, nil
}

func (s *CredentialStore) clientConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(s.secretsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: client secret file %s not found; download an OAuth client (Desktop app) from the Google Cloud console", ErrMissingCredentials, s.secretsPath)
		}
		return nil, fmt.Errorf("failed to read client secret file %s: %w", s.secretsPath, err)
	}

	conf, err := google.ConfigFromJSON(data, s.scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file %s: %w", s.secretsPath, err)
	}
	return conf, nil
}

func (s *CredentialStore) authorize(ctx context.Context) (*storedCredential, error) {
	conf, err := s.clientConfig()
	if err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartSpan(ctx, SpanAuthorization)
	defer span.End()

	s.logger.Info("interactive authorization required", logging.Path(s.tokenPath))

	tok, err := s.authorizer.Authorize(s.clientContext(ctx), conf)
	if err != nil {
		s.recordAuth(ctx, ResultFailure)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	s.recordAuth(ctx, ResultSuccess)

	instrumentation.AddSpanEvent(span, "authorization.completed",
		attribute.Bool("refresh_token_issued", tok.RefreshToken != ""))
	instrumentation.SetSpanSuccess(span)
	s.logger.Info("authorization completed",
		logging.Operation(SpanAuthorization),
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.String("refresh_token", logging.SanitizeToken(tok.RefreshToken)))

	return &storedCredential{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       conf.Scopes,
		Expiry:       s.expiryOf(tok),
	}, nil
}

// expiryOf computes the expiry against the store's clock when the endpoint
// reported a lifetime.
func (s *CredentialStore) expiryOf(tok *oauth2.Token) time.Time {
	if tok.ExpiresIn > 0 {
		return s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return tok.Expiry
}

func (s *CredentialStore) clientContext(ctx context.Context) context.Context {
	if s.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}

func (s *CredentialStore) recordRefresh(ctx context.Context, result string) {
	if s.metrics != nil {
		s.metrics.RecordOAuthTokenRefresh(ctx, result)
	}
}

func (s *CredentialStore) recordAuth(ctx context.Context, result string) {
	if s.metrics != nil {
		s.metrics.RecordOAuthAuth(ctx, result)
	}
}
