package google

import "errors"

var (
	// ErrNoToken is returned by the token blob loader when no blob exists yet.
	ErrNoToken = errors.New("no persisted Google OAuth token")

	// ErrMissingCredentials is returned when interactive authorization is
	// required but the OAuth client-secret file is not present on disk.
	ErrMissingCredentials = errors.New("missing OAuth client credentials")
)
