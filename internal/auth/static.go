package auth

import (
	"context"
	"strings"
)

// devTokenPrefix marks local development tokens: "dev:<subject>".
const devTokenPrefix = "dev:"

// StaticVerifier accepts "dev:<subject>" tokens and resolves them verbatim.
// It exists for local development and tests only; cloud targets must plug in
// a real identity-provider verifier.
type StaticVerifier struct{}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if !strings.HasPrefix(token, devTokenPrefix) {
		return nil, ErrInvalidToken
	}
	subject := strings.TrimPrefix(token, devTokenPrefix)
	if subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{Subject: subject}, nil
}
