package gmail_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/inboxmcp/internal/gmail"
	"github.com/teemow/inboxmcp/internal/server"
	"github.com/teemow/inboxmcp/internal/tools"
)

func searchEmailsTool(sc *server.ServerContext) tools.Tool {
	return tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "search_emails",
			Description: "Search Gmail messages with a Gmail query and summarize the matches",
			InputSchema: tools.ObjectSchema(map[string]tools.Property{
				"query": {
					Type:        tools.TypeString,
					Description: "Gmail search query (e.g., 'from:user@example.com is:unread')",
				},
				"max_results": {
					Type:        tools.TypeInteger,
					Description: fmt.Sprintf("Maximum number of messages to return (default: %d)", gmail.DefaultMaxResults),
					Default:     gmail.DefaultMaxResults,
				},
			}, "query"),
		},
		Handler: func(ctx context.Context, args tools.Arguments) tools.Result {
			return handleSearchEmails(ctx, args, sc)
		},
	}
}

func handleSearchEmails(ctx context.Context, args tools.Arguments, sc *server.ServerContext) tools.Result {
	query := strings.TrimSpace(args.String("query"))
	if query == "" {
		return tools.FailureResult(ActionSearchingEmails, errors.New("query is required"))
	}
	maxResults, err := maxResultsArg(args)
	if err != nil {
		return tools.FailureResult(ActionSearchingEmails, err)
	}

	mailbox, err := sc.Mailbox(ctx)
	if err != nil {
		return tools.FailureResult(ActionSearchingEmails, err)
	}

	ids, err := mailbox.ListMessageIDs(ctx, gmail.ListOptions{
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return tools.FailureResult(ActionSearchingEmails, err)
	}
	if len(ids) == 0 {
		return tools.TextResult(fmt.Sprintf("No messages found matching %q.", query))
	}

	summaries, err := fetchSummaries(ctx, mailbox, ids, sc.FetchConcurrency())
	if err != nil {
		return tools.FailureResult(ActionSearchingEmails, err)
	}
	for i, id := range ids {
		summaries[i] = "ID: " + id + "\n" + summaries[i]
	}
	return tools.TextResult(strings.Join(summaries, SummarySeparator))
}

func readEmailTool(sc *server.ServerContext) tools.Tool {
	return tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "read_email",
			Description: "Read one Gmail message: its headers and plain-text body",
			InputSchema: tools.ObjectSchema(map[string]tools.Property{
				"message_id": {
					Type:        tools.TypeString,
					Description: "Gmail message ID, as returned by search_emails",
				},
			}, "message_id"),
		},
		Handler: func(ctx context.Context, args tools.Arguments) tools.Result {
			return handleReadEmail(ctx, args, sc)
		},
	}
}

func handleReadEmail(ctx context.Context, args tools.Arguments, sc *server.ServerContext) tools.Result {
	id := strings.TrimSpace(args.String("message_id"))
	if id == "" {
		return tools.FailureResult(ActionReadingEmail, errors.New("message_id is required"))
	}

	mailbox, err := sc.Mailbox(ctx)
	if err != nil {
		return tools.FailureResult(ActionReadingEmail, err)
	}

	msg, err := mailbox.Message(ctx, id)
	if err != nil {
		return tools.FailureResult(ActionReadingEmail, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\n", msg.ID)
	for _, name := range []string{gmail.HeaderFrom, gmail.HeaderTo, gmail.HeaderSubject, gmail.HeaderDate} {
		if value := msg.Headers.Get(name); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}
	b.WriteString("\n")
	if msg.Body != "" {
		b.WriteString(msg.Body)
	} else {
		b.WriteString(msg.Snippet)
	}
	return tools.TextResult(b.String())
}
