package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"storefront/internal/domain/service"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyToken checks a Firebase ID token. The role comes from the "role"
// custom claim.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	claims := &service.TokenClaims{UID: result.UID}
	if email, ok := result.Claims["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := result.Claims["role"].(string); ok {
		claims.Role = role
	}
	return claims, nil
}

// SetRole stores role as a custom claim so it shows up in later ID tokens.
func (f *FirebaseAuthClient) SetRole(ctx context.Context, uid, role string) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": role})
}
