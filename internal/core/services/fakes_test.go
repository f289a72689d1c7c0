package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = uint(len(r.users) + 1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	var all []*models.User
	for id := uint(1); id <= uint(len(r.users)); id++ {
		if u, ok := r.users[id]; ok {
			all = append(all, u)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakeOrderRepo struct {
	orders    map[uint]*models.Order
	history   []models.OrderStatusHistory
	lastList  repositories.OrderFilter
	staleOnce bool
	updateErr error
	// takenFolios makes Create fail as a duplicate this many times
	takenFolios int
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[uint]*models.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	if r.takenFolios > 0 {
		r.takenFolios--
		r.orders[uint(order.Folio)+1000] = &models.Order{ID: uint(order.Folio) + 1000, Folio: order.Folio}
		return repositories.ErrDuplicateFolio
	}
	order.ID = uint(len(r.orders) + 100)
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uint) (*models.Order, error) {
	if o, ok := r.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, filter repositories.OrderFilter) ([]*models.Order, int64, error) {
	r.lastList = filter
	var out []*models.Order
	for _, o := range r.orders {
		if filter.EmployeeID != nil && o.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.StatusID != 0 && o.StatusID != filter.StatusID {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) NextFolio(context.Context) (int, error) {
	latest := 0
	for _, o := range r.orders {
		if o.Folio > latest {
			latest = o.Folio
		}
	}
	return latest + 1, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, change repositories.StatusChange) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if r.staleOnce {
		r.staleOnce = false
		return repositories.ErrStaleStatus
	}
	o, ok := r.orders[change.OrderID]
	if !ok || o.StatusID != change.FromStatus {
		return repositories.ErrStaleStatus
	}
	o.StatusID = change.ToStatus
	if change.FinishedAt != nil {
		o.FechaFinalizado = change.FinishedAt
	}
	r.history = append(r.history, models.OrderStatusHistory{
		OrderID:      change.OrderID,
		FromStatusID: change.FromStatus,
		ToStatusID:   change.ToStatus,
		ChangedBy:    change.ChangedBy,
		IPAddress:    change.IPAddress,
	})
	return nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context, employeeID *uint) (map[uint]int64, error) {
	counts := map[uint]int64{}
	for _, o := range r.orders {
		if employeeID != nil && o.EmployeeID != *employeeID {
			continue
		}
		counts[o.StatusID]++
	}
	return counts, nil
}

type fakeRevokedRepo struct {
	rows      map[string]time.Time
	existsErr error
	lookups   int
}

func newFakeRevokedRepo() *fakeRevokedRepo {
	return &fakeRevokedRepo{rows: map[string]time.Time{}}
}

func (r *fakeRevokedRepo) Create(_ context.Context, token *models.RevokedToken) error {
	r.rows[token.TokenID] = token.ExpiresAt
	return nil
}

func (r *fakeRevokedRepo) Exists(_ context.Context, tokenID string) (bool, error) {
	r.lookups++
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.rows[tokenID]
	return ok, nil
}

func (r *fakeRevokedRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, exp := range r.rows {
		if exp.Before(now) {
			delete(r.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]bool
	ttls    map[string]time.Duration
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]bool{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, tokenID string) (bool, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, false, c.err
	}
	revoked, ok := c.entries[tokenID]
	return revoked, ok, nil
}

func (c *fakeCache) Set(_ context.Context, tokenID string, revoked bool, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[tokenID] = revoked
	c.ttls[tokenID] = ttl
	return nil
}

var errBoom = errors.New("boom")

type recorder struct {
	failures      []string
	refreshes     int
	logins        []bool
	statusChanges []string
}

func (r *recorder) RecordAuthFailure(reason string) { r.failures = append(r.failures, reason) }
func (r *recorder) RecordTokenRefresh()             { r.refreshes++ }
func (r *recorder) RecordLogin(success bool)        { r.logins = append(r.logins, success) }
func (r *recorder) RecordStatusChange(to string)    { r.statusChanges = append(r.statusChanges, to) }
