package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/adapters/persistence/repositories"
	"cleanorder-api/internal/core/domain"
	"cleanorder-api/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db    *gorm.DB
	users repositories.UserRepository
	cfg   *Config
	log   *zap.Logger
}

// ErrAdminEmailTaken means ADMIN_EMAIL already belongs to a non-admin account
var ErrAdminEmailTaken = errors.New("ADMIN_EMAIL is already registered")

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config, log *zap.Logger) *Seeder {
	return &Seeder{db: db, users: repositories.NewUserRepository(db), cfg: cfg, log: log}
}

// Run executes all seeders. Sample employees and orders are only created in dev.
func (s *Seeder) Run() error {
	if err := SeedMasterData(s.db, s.log); err != nil {
		return fmt.Errorf("seed master data: %w", err)
	}

	if err := s.seedAdminUser(); err != nil {
		s.log.Warn("admin seeder skipped", zap.Error(err))
	}

	if s.cfg.IsDev() {
		if err := s.seedSampleOrders(); err != nil {
			s.log.Warn("sample order seeder skipped", zap.Error(err))
		}
	}

	s.log.Info("database seeding completed")
	return nil
}

// seedAdminUser creates the first admin from ADMIN_EMAIL / ADMIN_PASSWORD.
// In prod nothing is created unless both are set.
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role_id = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := getEnv("ADMIN_EMAIL", "")
	plain := getEnv("ADMIN_PASSWORD", "")
	if s.cfg.IsDev() {
		if email == "" {
			email = "admin@cleanorder.local"
		}
		if plain == "" {
			plain = "admin123456"
		}
	}
	if email == "" || plain == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required to create the first admin")
	}

	ctx := context.Background()
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrAdminEmailTaken, email)
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:    email,
		Password: hashed,
		FullName: "Administrador",
		RoleID:   uint(domain.RoleAdmin),
		IsActive: true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.log.Info("admin user created", zap.String("email", admin.Email))
	return nil
}

func (s *Seeder) seedSampleOrders() error {
	var count int64
	if err := s.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash("empleado123")
	if err != nil {
		return err
	}

	employee, err := s.sampleEmployee(hashed)
	if err != nil {
		return err
	}

	var region models.Region
	if err := s.db.Where("nombre = ?", "Centro").First(&region).Error; err != nil {
		return err
	}

	tomorrow := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	finished := time.Now().Add(-2 * time.Hour)
	orders := []models.Order{
		{Folio: 1001, StatusID: uint(domain.StatusScheduled), Cliente: "Hotel Centro", RegionID: &region.ID, Direccion: "Av. Juárez 120", HorasTrabajo: 3, FechaAgendada: &tomorrow},
		{Folio: 1002, StatusID: uint(domain.StatusInProgress), Cliente: "Oficinas Norte", Direccion: "Calle 5 de Mayo 44", Observaciones: "Llevar escalera", HorasTrabajo: 4.5},
		{Folio: 1003, StatusID: uint(domain.StatusDone), Cliente: "Clínica San José", RegionID: &region.ID, HorasTrabajo: 2, FechaFinalizado: &finished},
	}

	for i := range orders {
		orders[i].EmployeeID = employee.ID
	}

	if err := s.db.Create(&orders).Error; err != nil {
		return err
	}

	s.log.Info("sample orders created", zap.Int("count", len(orders)), zap.String("employee", employee.Email))
	return nil
}

// sampleEmployee returns the demo employee, creating it on first run
func (s *Seeder) sampleEmployee(hashed string) (*models.User, error) {
	ctx := context.Background()
	const email = "juan.perez@cleanorder.local"

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return s.users.GetByEmail(ctx, email)
	}

	employee := &models.User{
		Email:    email,
		Password: hashed,
		FullName: "Juan Pérez",
		RoleID:   uint(domain.RoleEmployee),
		IsActive: true,
	}
	if err := s.users.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}
