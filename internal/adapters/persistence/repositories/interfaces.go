package repositories

import (
	"context"
	"time"

	"cleanorder-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// OrderFilter narrows an order listing. A nil EmployeeID lists every employee.
type OrderFilter struct {
	EmployeeID *uint
	StatusID   uint
	Offset     int
	Limit      int
}

// StatusChange describes a single guarded status update
type StatusChange struct {
	OrderID    uint
	FromStatus uint
	ToStatus   uint
	ChangedBy  uint
	IPAddress  string
	FinishedAt *time.Time
}

// OrderRepository defines order repository interface
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*models.Order, int64, error)
	NextFolio(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, change StatusChange) error
	CountByStatus(ctx context.Context, employeeID *uint) (map[uint]int64, error)
}

// RevokedTokenRepository defines revoked token repository interface
type RevokedTokenRepository interface {
	Create(ctx context.Context, token *models.RevokedToken) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
