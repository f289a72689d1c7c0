package config

import (
	"errors"

	"cleanorder-api/internal/adapters/persistence/models"
	"cleanorder-api/internal/core/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedMasterData seeds the role, status and region catalogs
func SeedMasterData(db *gorm.DB, log *zap.Logger) error {
	if err := seedRoles(db, log); err != nil {
		return err
	}

	if err := seedOrderStatuses(db, log); err != nil {
		return err
	}

	if err := seedRegions(db, log); err != nil {
		return err
	}

	log.Info("master data seeded")
	return nil
}

func seedRoles(db *gorm.DB, log *zap.Logger) error {
	roles := []models.Role{
		{ID: uint(domain.RoleAdmin), Name: domain.RoleAdmin.Name(), Description: "Administrador del sistema"},
		{ID: uint(domain.RoleEmployee), Name: domain.RoleEmployee.Name(), Description: "Empleado de limpieza"},
	}

	for _, r := range roles {
		created, err := createIfMissing(db, &models.Role{}, r.ID, &r)
		if err != nil {
			return err
		}
		if created {
			log.Debug("created role", zap.String("name", r.Name))
		}
	}
	return nil
}

// Status ids are fixed; clients exchange them as integers.
func seedOrderStatuses(db *gorm.DB, log *zap.Logger) error {
	statuses := []models.OrderStatus{
		{ID: uint(domain.StatusScheduled), Name: domain.StatusNameScheduled, StepOrder: 1, Color: "#FF9800"},
		{ID: uint(domain.StatusInProgress), Name: domain.StatusNameInProgress, StepOrder: 2, Color: "#2196F3"},
		{ID: uint(domain.StatusDone), Name: domain.StatusNameDone, StepOrder: 3, Color: "#4CAF50", IsFinal: true},
	}

	for _, s := range statuses {
		created, err := createIfMissing(db, &models.OrderStatus{}, s.ID, &s)
		if err != nil {
			return err
		}
		if created {
			log.Debug("created order status", zap.String("name", s.Name))
		}
	}
	return nil
}

func seedRegions(db *gorm.DB, log *zap.Logger) error {
	regions := []models.Region{
		{Nombre: "Centro", IsActive: true},
		{Nombre: "Norte", IsActive: true},
		{Nombre: "Sur", IsActive: true},
		{Nombre: "Poniente", IsActive: true},
	}

	for _, r := range regions {
		var existing models.Region
		err := db.Where("nombre = ?", r.Nombre).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&r).Error; err != nil {
			return err
		}
		log.Debug("created region", zap.String("nombre", r.Nombre))
	}
	return nil
}

// createIfMissing inserts row unless a record with the given primary key exists
func createIfMissing(db *gorm.DB, probe interface{}, id uint, row interface{}) (bool, error) {
	err := db.First(probe, id).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}
