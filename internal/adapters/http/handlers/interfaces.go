package handlers

import (
	"context"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/core/domain"
	"cleanorder-api/internal/core/services"
)

// AuthService is what the auth endpoints need from the service layer
type AuthService interface {
	Login(ctx context.Context, input *services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, session domain.Session) error
	Me(ctx context.Context, userID uint) (*models.UserResponse, error)
}

// OrderService is what the order endpoints need from the service layer
type OrderService interface {
	List(ctx context.Context, session domain.Session, input *services.ListOrdersInput) (*services.ListOrdersOutput, error)
	Get(ctx context.Context, session domain.Session, id uint) (*models.Order, error)
	ChangeStatus(ctx context.Context, session domain.Session, input *services.ChangeStatusInput) (*models.Order, error)
	Summary(ctx context.Context, session domain.Session) (*domain.StatusSummary, error)
	Create(ctx context.Context, input *services.CreateOrderInput) (*models.Order, error)
}

// UserService is what the user endpoints need from the service layer
type UserService interface {
	ListUsers(ctx context.Context, input *services.ListUsersInput) (*services.ListUsersOutput, error)
	GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error)
}
