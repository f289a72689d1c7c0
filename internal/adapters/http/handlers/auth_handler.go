package handlers

import (
	"errors"
	"strings"
	"time"

	"cleanorder-api/internal/adapters/http/middleware"
	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/config"
	"cleanorder-api/internal/core/services"
	"cleanorder-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService AuthService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The token is also set
// as the session cookie; the body copy serves Bearer clients.
type LoginResponse struct {
	User        *models.UserResponse `json:"user"`
	AccessToken string               `json:"access_token"`
	ExpiresAt   time.Time            `json:"expires_at"`
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password. Sets the AuthToken cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	result, err := h.authService.Login(c.UserContext(), &services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserInactive):
			return response.Unauthorized(c, "Invalid email or password")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	middleware.SetSessionCookie(c, h.cookie, result.Token)

	return response.Success(c, "Login successful", LoginResponse{
		User:        result.User,
		AccessToken: result.Token.Value,
		ExpiresAt:   result.Token.ExpiresAt,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the current token and clear the session cookie
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.Logout(c.UserContext(), session); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	middleware.ClearSessionCookie(c, h.cookie)

	return response.Success(c, "Logout successful", nil)
}

// Me returns current user info
// @Summary Get current user
// @Description Get the authenticated user's information
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.Me(c.UserContext(), session.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user":               user,
		"session_expires_at": session.ExpiresAt,
	})
}
