package gmail

import "strings"

// InboxLabel is the system label of the inbox.
const InboxLabel = "INBOX"

// Header names fetched for message summaries.
const (
	HeaderFrom    = "From"
	HeaderTo      = "To"
	HeaderSubject = "Subject"
	HeaderDate    = "Date"
)

// SummaryHeaders are the headers requested for each message summary.
var SummaryHeaders = []string{HeaderFrom, HeaderSubject, HeaderDate}

// OutgoingMessage is a plain-text message to send.
type OutgoingMessage struct {
	To      []string
	Subject string
	Body    string
}

// ListOptions selects the messages returned by ListMessageIDs.
type ListOptions struct {
	// LabelIDs restricts the listing to messages carrying all of these labels.
	LabelIDs []string

	// Query is a Gmail search query, e.g. "from:ada@example.com is:unread".
	Query string

	// MaxResults bounds the number of IDs returned. Zero means DefaultMaxResults.
	MaxResults int64
}

// Header is a single message header.
type Header struct {
	Name  string
	Value string
}

// Headers are message headers in the order the API returned them.
type Headers []Header

// Get returns the value of the first header named name, compared
// case-insensitively, or "" if absent.
func (h Headers) Get(name string) string {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value
		}
	}
	return ""
}

// Message is a fetched message with its decoded plain-text body.
type Message struct {
	ID       string
	ThreadID string
	Snippet  string
	Headers  Headers
	Body     string
}
