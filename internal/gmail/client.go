package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxmcp/internal/instrumentation"
	"github.com/teemow/inboxmcp/internal/logging"
)

const (
	// DefaultMaxResults is used when ListOptions.MaxResults is not set.
	DefaultMaxResults = 10

	// maxPageSize is the largest page users.messages.list accepts.
	maxPageSize = 500

	me = "me"
)

// Mailbox is the subset of the Gmail API the tools depend on.
type Mailbox interface {
	// Send submits msg and returns the ID of the sent message.
	Send(ctx context.Context, msg *OutgoingMessage) (string, error)

	// ListMessageIDs returns message IDs in the order the API lists them.
	ListMessageIDs(ctx context.Context, opts ListOptions) ([]string, error)

	// MessageHeaders fetches only the named headers of a message. Errors
	// name the message ID.
	MessageHeaders(ctx context.Context, id string, names ...string) (Headers, error)

	// Message fetches a message with its plain-text body.
	Message(ctx context.Context, id string) (*Message, error)
}

// APIRecorder receives one observation per Gmail API call.
type APIRecorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	// HTTPClient must carry the OAuth credentials.
	HTTPClient *http.Client

	// Recorder is optional.
	Recorder APIRecorder

	Logger *slog.Logger

	// APIOptions are appended after the HTTP client option, e.g.
	// option.WithEndpoint for tests.
	APIOptions []option.ClientOption
}

// Client wraps the Gmail Users service.
type Client struct {
	svc      *gmail.UsersService
	recorder APIRecorder
	logger   *slog.Logger
}

var _ Mailbox = (*Client)(nil)

// NewClient creates a Gmail client bound to an authenticated HTTP client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.HTTPClient == nil {
		return nil, errors.New("gmail: an authenticated HTTP client is required")
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(cfg.HTTPClient)}, cfg.APIOptions...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		svc:      svc.Users,
		recorder: cfg.Recorder,
		logger:   logger,
	}, nil
}

// Send sends a plain-text email through the Gmail API.
func (c *Client) Send(ctx context.Context, msg *OutgoingMessage) (string, error) {
	raw, err := buildRawMessage(msg)
	if err != nil {
		return "", err
	}

	var sent *gmail.Message
	err = c.observe(ctx, instrumentation.OperationSend, func(ctx context.Context) error {
		var err error
		sent, err = c.svc.Messages.Send(me, &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug("sent message",
		slog.String("recipient_domains", logging.RedactRecipients(strings.Join(msg.To, ","))),
		slog.String("message_id", sent.Id))
	return sent.Id, nil
}

// ListMessageIDs lists message IDs with pagination, fetching up to
// opts.MaxResults IDs across as many pages as needed.
func (c *Client) ListMessageIDs(ctx context.Context, opts ListOptions) ([]string, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	operation := instrumentation.OperationList
	if opts.Query != "" {
		operation = instrumentation.OperationSearch
	}

	var ids []string
	pageToken := ""
	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}
		pageSize := min(remaining, maxPageSize)

		req := c.svc.Messages.List(me).MaxResults(pageSize)
		if len(opts.LabelIDs) > 0 {
			req = req.LabelIds(opts.LabelIDs...)
		}
		if opts.Query != "" {
			req = req.Q(opts.Query)
		}
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		var res *gmail.ListMessagesResponse
		err := c.observe(ctx, operation, func(ctx context.Context) error {
			var err error
			res, err = req.Context(ctx).Do()
			if err == nil {
				trace.SpanFromContext(ctx).SetAttributes(
					attribute.Int(instrumentation.SpanAttrResultCount, len(res.Messages)))
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// MessageHeaders fetches the metadata of a message restricted to names.
func (c *Client) MessageHeaders(ctx context.Context, id string, names ...string) (Headers, error) {
	req := c.svc.Messages.Get(me, id).Format("metadata")
	if len(names) > 0 {
		req = req.MetadataHeaders(names...)
	}

	var msg *gmail.Message
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		msg, err = req.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	if msg.Payload == nil {
		return Headers{}, nil
	}
	return convertHeaders(msg.Payload.Headers), nil
}

// Message fetches the full message and decodes its text/plain body.
func (c *Client) Message(ctx context.Context, id string) (*Message, error) {
	var msg *gmail.Message
	err := c.observe(ctx, instrumentation.OperationGet, func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Messages.Get(me, id).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	out := &Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload != nil {
		out.Headers = convertHeaders(msg.Payload.Headers)
		out.Body, err = plainTextBody(msg.Payload)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// observe wraps one API call in a span and records its outcome.
func (c *Client) observe(ctx context.Context, operation string, call func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation)
	defer span.End()

	start := time.Now()
	err := call(ctx)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	if c.recorder != nil {
		c.recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, operation, status, duration)
	}

	logging.WithOperation(c.logger, operation).Debug("gmail api call",
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
		logging.Err(err))
	return err
}
