package gmail

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// buildRawMessage renders msg in RFC 2822 form and base64url-encodes it for
// the Gmail send endpoint.
func buildRawMessage(msg *OutgoingMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", errors.New("at least one recipient is required")
	}

	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(strings.Join(msg.To, ", "))
	b.WriteString("\r\n")

	// Subject is RFC 2047 encoded when it carries non-ASCII characters
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(msg.Subject))
	b.WriteString("\r\n")

	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047.
// Pure ASCII input is returned unchanged.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// plainTextBody returns the decoded text/plain body of payload, searching
// nested multipart parts depth first.
func plainTextBody(payload *gmail.MessagePart) (string, error) {
	data := findPart(payload, "text/plain")
	if data == "" {
		return "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail occasionally omits padding
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}
	return string(decoded), nil
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return part.Body.Data
	}
	// A single-part message may omit its MIME type.
	if part.MimeType == "" && len(part.Parts) == 0 && part.Body != nil {
		return part.Body.Data
	}
	for _, p := range part.Parts {
		if data := findPart(p, mimeType); data != "" {
			return data
		}
	}
	return ""
}

func convertHeaders(in []*gmail.MessagePartHeader) Headers {
	out := make(Headers, 0, len(in))
	for _, h := range in {
		if h == nil {
			continue
		}
		out = append(out, Header{Name: h.Name, Value: h.Value})
	}
	return out
}
