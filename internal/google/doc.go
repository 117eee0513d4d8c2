// Package google manages the Google OAuth2 credential lifecycle for Gmail access.
//
// CredentialStore persists a token blob on disk and hands out authenticated
// HTTP sessions. On each Session call it:
//   - loads the blob on first use,
//   - returns the cached token while it is valid,
//   - refreshes it with the refresh token once it nears expiry,
//   - falls back to an interactive LoopbackAuthorizer flow when there is no
//     blob or no refresh token.
//
// Interactive authorization needs the OAuth client-secret file downloaded from
// the Google Cloud console; without it the store fails with
// ErrMissingCredentials.
package google
