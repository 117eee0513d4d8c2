package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/inboxmcp/internal/gmail"
	"github.com/teemow/inboxmcp/internal/server"
	"github.com/teemow/inboxmcp/internal/tools"
	"github.com/teemow/inboxmcp/internal/tools/batch"
)

// SummarySeparator joins message summaries in a read_emails result.
const SummarySeparator = "\n---\n"

// unknownHeader stands in for a summary header the message does not carry.
const unknownHeader = "Unknown"

func sendEmailTool(sc *server.ServerContext) tools.Tool {
	return tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "send_email",
			Description: "Send a plain-text email through Gmail",
			InputSchema: tools.ObjectSchema(map[string]tools.Property{
				"to": {
					Type:        tools.TypeString,
					Description: "Recipient email address(es), comma-separated for multiple recipients",
				},
				"subject": {
					Type:        tools.TypeString,
					Description: "Email subject",
				},
				"body": {
					Type:        tools.TypeString,
					Description: "Email body content",
				},
			}, "to", "subject", "body"),
		},
		Handler: func(ctx context.Context, args tools.Arguments) tools.Result {
			return handleSendEmail(ctx, args, sc)
		},
	}
}

func handleSendEmail(ctx context.Context, args tools.Arguments, sc *server.ServerContext) tools.Result {
	to := splitEmailAddresses(args.String("to"))
	subject := args.String("subject")

	mailbox, err := sc.Mailbox(ctx)
	if err != nil {
		return tools.FailureResult(ActionSendingEmail, err)
	}

	messageID, err := mailbox.Send(ctx, &gmail.OutgoingMessage{
		To:      to,
		Subject: subject,
		Body:    args.String("body"),
	})
	if err != nil {
		return tools.FailureResult(ActionSendingEmail, err)
	}

	return tools.TextResult(fmt.Sprintf("Email sent successfully!\nMessage ID: %s\nTo: %s\nSubject: %s",
		messageID, strings.Join(to, ", "), subject))
}

func readEmailsTool(sc *server.ServerContext) tools.Tool {
	return tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "read_emails",
			Description: "Read the most recent messages in the Gmail inbox",
			InputSchema: tools.ObjectSchema(map[string]tools.Property{
				"max_results": {
					Type:        tools.TypeInteger,
					Description: fmt.Sprintf("Maximum number of messages to read (default: %d)", gmail.DefaultMaxResults),
					Default:     gmail.DefaultMaxResults,
				},
			}),
		},
		Handler: func(ctx context.Context, args tools.Arguments) tools.Result {
			return handleReadEmails(ctx, args, sc)
		},
	}
}

func handleReadEmails(ctx context.Context, args tools.Arguments, sc *server.ServerContext) tools.Result {
	maxResults, err := maxResultsArg(args)
	if err != nil {
		return tools.FailureResult(ActionReadingEmails, err)
	}

	mailbox, err := sc.Mailbox(ctx)
	if err != nil {
		return tools.FailureResult(ActionReadingEmails, err)
	}

	ids, err := mailbox.ListMessageIDs(ctx, gmail.ListOptions{
		LabelIDs:   []string{gmail.InboxLabel},
		MaxResults: maxResults,
	})
	if err != nil {
		return tools.FailureResult(ActionReadingEmails, err)
	}
	if len(ids) == 0 {
		return tools.TextResult("No messages found in inbox.")
	}

	summaries, err := fetchSummaries(ctx, mailbox, ids, sc.FetchConcurrency())
	if err != nil {
		return tools.FailureResult(ActionReadingEmails, err)
	}
	return tools.TextResult(strings.Join(summaries, SummarySeparator))
}

// fetchSummaries fetches the summary headers of every message. The result
// is in the order of ids regardless of concurrency.
func fetchSummaries(ctx context.Context, mailbox gmail.Mailbox, ids []string, concurrency int) ([]string, error) {
	return batch.Map(ctx, ids, concurrency, func(ctx context.Context, id string) (string, error) {
		headers, err := mailbox.MessageHeaders(ctx, id, gmail.SummaryHeaders...)
		if err != nil {
			return "", err
		}
		return formatSummary(headers), nil
	})
}

func formatSummary(headers gmail.Headers) string {
	var b strings.Builder
	for i, name := range gmail.SummaryHeaders {
		if i > 0 {
			b.WriteByte('\n')
		}
		value := headers.Get(name)
		if value == "" {
			value = unknownHeader
		}
		fmt.Fprintf(&b, "%s: %s", name, value)
	}
	return b.String()
}

func maxResultsArg(args tools.Arguments) (int64, error) {
	n, err := args.Int("max_results", gmail.DefaultMaxResults)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("max_results must be a positive integer, got %d", n)
	}
	return n, nil
}

// splitEmailAddresses splits a comma-separated string of email addresses
func splitEmailAddresses(addresses string) []string {
	if addresses == "" {
		return nil
	}

	parts := strings.Split(addresses, ",")
	result := make([]string, 0, len(parts))
	for _, addr := range parts {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
