// Package auth verifies bearer tokens and attaches the resolved user to the
// request context. Handlers never see tokens, only users.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Identity is what a verified token proves about the caller.
type Identity struct {
	Subject string
}

// Verifier validates a bearer token against the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
