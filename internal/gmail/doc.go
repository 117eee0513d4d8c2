// Package gmail provides a client for the parts of the Gmail API the MCP tools
// use: sending plain-text mail, listing and searching message IDs, and
// fetching message headers or bodies.
//
// The client does not own credentials. It is constructed from an HTTP client
// that already carries an OAuth token, normally obtained from
// google.CredentialStore.Session, and is cheap enough to build per tool call.
//
// Every API call runs inside an OpenTelemetry span and, when an APIRecorder is
// configured, is counted in google_api_operations_total.
//
// Example usage:
//
//	httpClient, err := store.Session(ctx)
//	if err != nil {
//	    return err
//	}
//	client, err := gmail.NewClient(ctx, gmail.Config{HTTPClient: httpClient})
//	if err != nil {
//	    return err
//	}
//
//	ids, err := client.ListMessageIDs(ctx, gmail.ListOptions{
//	    LabelIDs:   []string{gmail.InboxLabel},
//	    MaxResults: 10,
//	})
package gmail
