package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
	"cleanorder-api/internal/core/domain"
	"cleanorder-api/internal/pkg/jwt"
	"cleanorder-api/internal/pkg/metrics"
	"cleanorder-api/internal/pkg/password"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// TokenIssuer mints session tokens
type TokenIssuer interface {
	Issue(id jwt.Identity) (*jwt.IssuedToken, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    repositories.UserRepository
	issuer      TokenIssuer
	revocations *RevocationService
	metrics     metrics.Recorder
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	issuer TokenIssuer,
	revocations *RevocationService,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		issuer:      issuer,
		revocations: revocations,
		metrics:     recorder,
		logger:      logger,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful login
type LoginResult struct {
	User  *models.UserResponse
	Token *jwt.IssuedToken
}

// Login authenticates a user and issues a session token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		s.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.metrics.RecordLogin(false)
		return nil, ErrUserInactive
	}

	token, err := s.issuer.Issue(jwt.Identity{
		Email:  user.Email,
		UserID: user.ID,
		RoleID: user.RoleID,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("user logged in", zap.Uint("user_id", user.ID), zap.Uint("role_id", user.RoleID))

	return &LoginResult{User: user.ToResponse(), Token: token}, nil
}

// Logout revokes the token backing the session
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if err := s.revocations.Revoke(ctx, session); err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.Uint("user_id", session.UserID))
	return nil
}

// Me returns the user behind the session
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}
