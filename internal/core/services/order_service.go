package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
	"cleanorder-api/internal/core/domain"
	"cleanorder-api/internal/pkg/metrics"
	"cleanorder-api/internal/pkg/pagination"
)

// Order service errors
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrStatusConflict   = errors.New("order status changed concurrently")
	ErrForbiddenOrder   = errors.New("order is assigned to another employee")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrFolioConflict    = errors.New("could not allocate a free folio")
)

// folioAttempts bounds how often Create re-reads the next folio after
// losing the unique index race to a concurrent insert.
const folioAttempts = 3

// OrderService handles order business logic
type OrderService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	metrics   metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		metrics:   recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// ListOrdersInput represents list orders input
type ListOrdersInput struct {
	Page     int
	Limit    int
	StatusID domain.StatusID
}

// ListOrdersOutput represents list orders output
type ListOrdersOutput struct {
	Orders []*models.OrderResponse `json:"orders"`
	Meta   *pagination.Meta        `json:"meta"`
}

// List lists the orders visible to the session. Employees only see their own.
func (s *OrderService) List(ctx context.Context, session domain.Session, input *ListOrdersInput) (*ListOrdersOutput, error) {
	if input.StatusID != 0 && !input.StatusID.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	params := pagination.NewParams(input.Page, input.Limit)
	filter := repositories.OrderFilter{
		StatusID: uint(input.StatusID),
		Offset:   params.Offset,
		Limit:    params.Limit,
	}
	if !session.IsAdmin() {
		employeeID := session.UserID
		filter.EmployeeID = &employeeID
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*models.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ToResponse())
	}

	return &ListOrdersOutput{
		Orders: out,
		Meta:   pagination.GetMeta(params, total),
	}, nil
}

// Get returns one order the session may see
func (s *OrderService) Get(ctx context.Context, session domain.Session, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !session.IsAdmin() && order.EmployeeID != session.UserID {
		return nil, ErrForbiddenOrder
	}
	return order, nil
}

// ChangeStatusInput represents change status input
type ChangeStatusInput struct {
	OrderID   uint
	ToStatus  domain.StatusID
	IPAddress string
}

// ChangeStatus moves an order one step forward in its lifecycle
func (s *OrderService) ChangeStatus(ctx context.Context, session domain.Session, input *ChangeStatusInput) (*models.Order, error) {
	if !input.ToStatus.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	order, err := s.Get(ctx, session, input.OrderID)
	if err != nil {
		return nil, err
	}

	from := domain.StatusID(order.StatusID)
	if err := domain.ValidateTransition(from, input.ToStatus); err != nil {
		return nil, err
	}

	change := repositories.StatusChange{
		OrderID:    order.ID,
		FromStatus: uint(from),
		ToStatus:   uint(input.ToStatus),
		ChangedBy:  session.UserID,
		IPAddress:  input.IPAddress,
	}
	if input.ToStatus == domain.StatusDone {
		finished := s.now()
		change.FinishedAt = &finished
	}

	if err := s.orderRepo.UpdateStatus(ctx, change); err != nil {
		if errors.Is(err, repositories.ErrStaleStatus) {
			return nil, ErrStatusConflict
		}
		return nil, err
	}

	s.metrics.RecordStatusChange(input.ToStatus.Name())
	s.logger.Info("order status changed",
		zap.Uint("order_id", order.ID),
		zap.Int("folio", order.Folio),
		zap.String("from", from.Name()),
		zap.String("to", input.ToStatus.Name()),
		zap.Uint("user_id", session.UserID),
	)

	updated, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Summary counts the session's orders per status
func (s *OrderService) Summary(ctx context.Context, session domain.Session) (*domain.StatusSummary, error) {
	var employeeID *uint
	if !session.IsAdmin() {
		id := session.UserID
		employeeID = &id
	}

	counts, err := s.orderRepo.CountByStatus(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	summary := &domain.StatusSummary{
		Scheduled:  counts[uint(domain.StatusScheduled)],
		InProgress: counts[uint(domain.StatusInProgress)],
		Done:       counts[uint(domain.StatusDone)],
	}
	summary.Total = summary.Scheduled + summary.InProgress + summary.Done
	return summary, nil
}

// CreateOrderInput represents create order input
type CreateOrderInput struct {
	EmployeeID    uint       `json:"empleadoId" validate:"required"`
	Cliente       string     `json:"cliente"`
	RegionID      *uint      `json:"regionId,omitempty"`
	Direccion     string     `json:"direccion"`
	Observaciones string     `json:"observaciones,omitempty"`
	HorasTrabajo  float64    `json:"horasTrabajo"`
	FechaAgendada *time.Time `json:"fechaAgendada,omitempty"`
}

// Create schedules a new order for an employee
func (s *OrderService) Create(ctx context.Context, input *CreateOrderInput) (*models.Order, error) {
	if input.EmployeeID == 0 || input.HorasTrabajo < 0 {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, input.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	order := &models.Order{
		StatusID:      uint(domain.StatusScheduled),
		Cliente:       strings.TrimSpace(input.Cliente),
		RegionID:      input.RegionID,
		Direccion:     strings.TrimSpace(input.Direccion),
		Observaciones: strings.TrimSpace(input.Observaciones),
		HorasTrabajo:  input.HorasTrabajo,
		EmployeeID:    input.EmployeeID,
		FechaAgendada: input.FechaAgendada,
	}
	if err := s.insertWithFolio(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created", zap.Uint("order_id", order.ID), zap.Int("folio", order.Folio), zap.Uint("employee_id", input.EmployeeID))

	return s.orderRepo.GetByID(ctx, order.ID)
}

// insertWithFolio assigns the next folio and inserts the order, taking a
// fresh folio whenever a concurrent create already claimed it.
func (s *OrderService) insertWithFolio(ctx context.Context, order *models.Order) error {
	for attempt := 1; attempt <= folioAttempts; attempt++ {
		folio, err := s.orderRepo.NextFolio(ctx)
		if err != nil {
			return err
		}
		order.Folio = folio

		err = s.orderRepo.Create(ctx, order)
		if !errors.Is(err, repositories.ErrDuplicateFolio) {
			return err
		}
		s.logger.Warn("folio taken, retrying", zap.Int("folio", folio), zap.Int("attempt", attempt))
	}
	return ErrFolioConflict
}
