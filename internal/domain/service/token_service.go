package service

import (
	"context"
)

// TokenClaims is what the API needs from a verified bearer token.
type TokenClaims struct {
	UID   string
	Email string
	Role  string
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*TokenClaims, error)
}
