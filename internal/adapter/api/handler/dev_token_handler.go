package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/domain/entity"
	"storefront/internal/infrastructure/firebase"
	"storefront/pkg/response"
)

type DevTokenHandler struct {
	issuer *firebase.DevTokenIssuer
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(issuer *firebase.DevTokenIssuer) *DevTokenHandler {
	return &DevTokenHandler{
		issuer: issuer,
	}
}

func SetupDevTokenHandler(issuer *firebase.DevTokenIssuer) {
	devTokenHandler = NewDevTokenHandler(issuer)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

type devTokenRequest struct {
	UID   string `json:"uid" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin customer"`
}

// GenerateToken mints a signed development token for any uid.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if req.Role == "" {
		req.Role = entity.RoleCustomer
	}

	token, err := h.issuer.GenerateToken(req.UID, req.Email, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":    req.UID,
			"email": req.Email,
			"role":  req.Role,
		},
	})
}
