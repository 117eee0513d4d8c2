package google

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateState generates a random state parameter for CSRF protection of the
// authorization callback.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
