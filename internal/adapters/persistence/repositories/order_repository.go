package repositories

import (
	"context"
	"errors"

	"cleanorder-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ErrStaleStatus means the guarded update matched no row: the order moved
// on, or vanished, between read and write.
var ErrStaleStatus = errors.New("order status no longer matches")

// ErrDuplicateFolio means another order claimed the folio first.
var ErrDuplicateFolio = errors.New("folio already taken")

// orderRepository implements OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new order
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateFolio
	}
	return err
}

// employeeName loads only what the order payload shows of the assignee
func employeeName(db *gorm.DB) *gorm.DB {
	return db.Select("id", "full_name")
}

// GetByID gets an order with its status, region and employee
func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Employee", employeeName).
		Preload("Status").
		Preload("Region").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List lists orders, most recently scheduled first
func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.EmployeeID != nil {
			db = db.Where("employee_id = ?", *filter.EmployeeID)
		}
		if filter.StatusID != 0 {
			db = db.Where("status_id = ?", filter.StatusID)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(scope).
		Preload("Employee", employeeName).
		Preload("Status").
		Preload("Region").
		Order("fecha_agendada DESC").
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// NextFolio returns the next free folio, counting soft-deleted orders
func (r *orderRepository) NextFolio(ctx context.Context) (int, error) {
	var latest int
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Order{}).
		Select("COALESCE(MAX(folio), 0)").
		Row().
		Scan(&latest)
	if err != nil {
		return 0, err
	}
	return latest + 1, nil
}

// UpdateStatus moves an order from FromStatus to ToStatus and records the change.
// The update only matches while the stored status still equals FromStatus.
func (r *orderRepository) UpdateStatus(ctx context.Context, change StatusChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status_id": change.ToStatus}
		if change.FinishedAt != nil {
			updates["fecha_finalizado"] = change.FinishedAt
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status_id = ?", change.OrderID, change.FromStatus).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		return tx.Create(&models.OrderStatusHistory{
			OrderID:      change.OrderID,
			FromStatusID: change.FromStatus,
			ToStatusID:   change.ToStatus,
			ChangedBy:    change.ChangedBy,
			IPAddress:    change.IPAddress,
		}).Error
	})
}

// CountByStatus counts orders per status id
func (r *orderRepository) CountByStatus(ctx context.Context, employeeID *uint) (map[uint]int64, error) {
	var rows []struct {
		StatusID uint
		Total    int64
	}

	db := r.db.WithContext(ctx).Model(&models.Order{})
	if employeeID != nil {
		db = db.Where("employee_id = ?", *employeeID)
	}
	if err := db.Select("status_id, COUNT(*) AS total").Group("status_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.StatusID] = row.Total
	}
	return counts, nil
}
