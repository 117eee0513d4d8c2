package gmail_tools

import (
	"fmt"

	"github.com/teemow/inboxmcp/internal/server"
	"github.com/teemow/inboxmcp/internal/tools"
)

// Failure actions reported in "Error {action}: {err}" texts.
const (
	ActionSendingEmail    = "sending email"
	ActionReadingEmails   = "reading emails"
	ActionSearchingEmails = "searching emails"
	ActionReadingEmail    = "reading email"
)

// RegisterGmailTools registers the Gmail tools with the registry. extended
// adds search_emails and read_email.
func RegisterGmailTools(reg *tools.Registry, sc *server.ServerContext, extended bool) error {
	if err := reg.Register(sendEmailTool(sc), readEmailsTool(sc)); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	if !extended {
		return nil
	}

	if err := reg.Register(searchEmailsTool(sc), readEmailTool(sc)); err != nil {
		return fmt.Errorf("failed to register extended email tools: %w", err)
	}
	return nil
}
