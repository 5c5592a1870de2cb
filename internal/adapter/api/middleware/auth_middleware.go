package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/domain/service"
	"storefront/internal/usecase"
	"storefront/pkg/errors"
	"storefront/pkg/response"
)

type AuthMiddleware struct {
	verifier    service.TokenVerifier
	userUseCase *usecase.UserUseCase
}

func NewAuthMiddleware(verifier service.TokenVerifier, userUseCase *usecase.UserUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:    verifier,
		userUseCase: userUseCase,
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate verifies the bearer token and sets "uid" and "role" on the
// context. First-time users are provisioned from the token claims.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return response.Error(c, errors.Unauthorized("Invalid authorization format", nil))
		}

		claims, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		user, err := m.userUseCase.EnsureUser(c.Request().Context(), claims.UID, claims.Email, claims.Role)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set("uid", user.ID)
		c.Set("role", user.Role)

		return next(c)
	}
}
