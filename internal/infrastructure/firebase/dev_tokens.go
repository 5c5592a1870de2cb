package firebase

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"storefront/internal/domain/service"
)

const devIssuer = "storefront-dev"

type devClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// DevTokenIssuer mints and verifies HS256 tokens for local development, where
// no Firebase project is configured.
type DevTokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewDevTokenIssuer(secret string, expiry time.Duration) *DevTokenIssuer {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &DevTokenIssuer{
		secret: []byte(secret),
		expiry: expiry,
	}
}

func (d *DevTokenIssuer) GenerateToken(uid, email, role string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}

	now := time.Now()
	claims := devClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    devIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d.expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
}

func (d *DevTokenIssuer) VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error) {
	var claims devClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Issuer != devIssuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}

	return &service.TokenClaims{
		UID:   claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
