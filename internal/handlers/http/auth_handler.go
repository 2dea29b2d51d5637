package http

import (
	"net/http"
	"strings"
	"time"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	apperrors "netqoe/pkg/errors"
	"netqoe/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userNamespace derives stable user ids from usernames, so repeated logins
// see the same scenarios.
var userNamespace = uuid.MustParse("6f0d3c2e-8f51-4b7e-9a43-2d1c5b7e0a91")

// UserIDFor returns the id assigned to username.
func UserIDFor(username string) domain.UserID {
	return domain.UserID(uuid.NewSHA1(userNamespace, []byte(strings.ToLower(username))).String())
}

type AuthHandler struct {
	authService ports.AuthService
	adminUsers  map[string]struct{}
}

func NewAuthHandler(authService ports.AuthService, adminUsers []string) *AuthHandler {
	admins := make(map[string]struct{}, len(adminUsers))
	for _, u := range adminUsers {
		admins[strings.ToLower(strings.TrimSpace(u))] = struct{}{}
	}
	return &AuthHandler{
		authService: authService,
		adminUsers:  admins,
	}
}

func (h *AuthHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/login", h.Login)
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	ExpiresIn   int             `json:"expires_in"`
	UserID      domain.UserID   `json:"user_id"`
	Username    string          `json:"username"`
	Role        domain.UserRole `json:"role"`
}

// Login issues an access token for username. There is no credential store;
// the admin role is granted only to configured admin users.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if err := validation.ValidateUsername(req.Username); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidateRole(req.Role); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	role := domain.RoleEngineer
	if domain.UserRole(req.Role) == domain.RoleAdmin {
		if _, ok := h.adminUsers[strings.ToLower(req.Username)]; !ok {
			_ = c.Error(apperrors.NewForbiddenError("admin role not permitted for this user"))
			return
		}
		role = domain.RoleAdmin
	}

	principal := domain.Principal{
		UserID:   UserIDFor(req.Username),
		Username: req.Username,
		Role:     role,
	}
	token, expiresAt, err := h.authService.GenerateToken(principal)
	if err != nil {
		_ = c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to generate token", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
		UserID:      principal.UserID,
		Username:    principal.Username,
		Role:        principal.Role,
	})
}
