package services

import (
	"context"
	"errors"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
	"cleanorder-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page  int
	Limit int
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users []*models.UserResponse `json:"users"`
	Meta  *pagination.Meta       `json:"meta"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	params := pagination.NewParams(input.Page, input.Limit)

	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}

	return &ListUsersOutput{
		Users: out,
		Meta:  pagination.GetMeta(params, total),
	}, nil
}

// GetProfile gets the current user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}
