package google

import gmail "google.golang.org/api/gmail/v1"

// DefaultOAuthScopes are the scopes requested during interactive authorization.
// They cover sending mail and reading message metadata and bodies; nothing
// broader is needed by the registered tools.
var DefaultOAuthScopes = []string{
	gmail.GmailSendScope,
	gmail.GmailReadonlyScope,
}
