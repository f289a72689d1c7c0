package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"cleanorder-api/internal/config"
	"cleanorder-api/internal/core/domain"
	"cleanorder-api/internal/pkg/jwt"
	"cleanorder-api/internal/pkg/metrics"
	"cleanorder-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Keys under which the authenticated session is stored in c.Locals
const (
	LocalUserID         = "userID"
	LocalEmail          = "email"
	LocalRoleID         = "roleID"
	LocalTokenID        = "tokenID"
	LocalTokenExpiresAt = "tokenExpiresAt"
)

// unauthorizedMessage is the only message a rejected caller ever sees
const unauthorizedMessage = "Unauthorized"

// TokenAuthority validates and refreshes session tokens
type TokenAuthority interface {
	Validate(token string) (*jwt.Claims, error)
	MaybeRefresh(claims *jwt.Claims) (*jwt.IssuedToken, error)
}

// RevocationChecker reports tokens revoked before their expiry
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig wires the authentication middleware
type AuthConfig struct {
	Authority   TokenAuthority
	Revocations RevocationChecker
	Cookie      config.CookieConfig
	Metrics     metrics.Recorder
	Logger      *zap.Logger
}

// AuthMiddleware authenticates the request and slides the session forward
// when the token is close to expiry.
func AuthMiddleware(cfg AuthConfig) fiber.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	reject := func(c *fiber.Ctx, reason string, err error) error {
		cfg.Metrics.RecordAuthFailure(reason)
		cfg.Logger.Debug("request rejected",
			zap.String("reason", reason),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Error(err),
		)
		return response.Unauthorized(c, unauthorizedMessage)
	}

	return func(c *fiber.Ctx) error {
		// 1. Cookie first, then Authorization header
		accessToken := extractToken(c, cfg.Cookie.Name)
		if accessToken == "" {
			return reject(c, "missing", nil)
		}

		// 2. Validate token
		claims, err := cfg.Authority.Validate(accessToken)
		if err != nil {
			return reject(c, failureReason(err), err)
		}

		// 3. Revocation
		if cfg.Revocations != nil {
			revoked, err := cfg.Revocations.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				return reject(c, "revocation_check", err)
			}
			if revoked {
				return reject(c, "revoked", nil)
			}
		}

		// 4. Set session in context
		id := claims.Identity()
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalEmail, id.Email)
		c.Locals(LocalRoleID, domain.RoleID(id.RoleID))
		c.Locals(LocalTokenID, claims.ID)
		c.Locals(LocalTokenExpiresAt, claims.ExpiresAtTime())

		// 5. Sliding refresh
		refreshed, err := cfg.Authority.MaybeRefresh(claims)
		switch {
		case err != nil:
			cfg.Logger.Warn("token refresh failed", zap.Uint("user_id", id.UserID), zap.Error(err))
		case refreshed != nil:
			SetSessionCookie(c, cfg.Cookie, refreshed)
			cfg.Metrics.RecordTokenRefresh()
			cfg.Logger.Debug("token refreshed", zap.Uint("user_id", id.UserID), zap.Time("expires_at", refreshed.ExpiresAt))
		}

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx, cookieName string) string {
	if token := c.Cookies(cookieName); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignature):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

// SetSessionCookie writes the token into the session cookie
func SetSessionCookie(c *fiber.Ctx, cfg config.CookieConfig, token *jwt.IssuedToken) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    token.Value,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  token.ExpiresAt,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c *fiber.Ctx, cfg config.CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// SessionFromCtx returns the session stored by AuthMiddleware
func SessionFromCtx(c *fiber.Ctx) (domain.Session, bool) {
	userID, ok := c.Locals(LocalUserID).(uint)
	if !ok {
		return domain.Session{}, false
	}

	session := domain.Session{UserID: userID}
	session.Email, _ = c.Locals(LocalEmail).(string)
	session.RoleID, _ = c.Locals(LocalRoleID).(domain.RoleID)
	session.TokenID, _ = c.Locals(LocalTokenID).(string)
	session.ExpiresAt, _ = c.Locals(LocalTokenExpiresAt).(time.Time)
	return session, true
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.RoleID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRoleID).(domain.RoleID)
		if !ok {
			return response.Unauthorized(c, unauthorizedMessage)
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}
