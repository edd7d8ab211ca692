package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Erixon159/autemix-app/shared/models"
)

// GormMachineRepo is the PostgreSQL-backed vending machine repository
type GormMachineRepo struct {
	db *gorm.DB
}

// NewGormMachineRepo creates a machine repository backed by the given database
func NewGormMachineRepo(db *gorm.DB) *GormMachineRepo {
	return &GormMachineRepo{db: db}
}

func (r *GormMachineRepo) Create(ctx context.Context, machine *models.VendingMachine) error {
	err := r.db.WithContext(ctx).Create(machine).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// FindByLookup is deliberately not scoped to a tenant: the owning tenant is
// only known after the machine is matched.
func (r *GormMachineRepo) FindByLookup(ctx context.Context, lookupDigest string) (*models.VendingMachine, error) {
	var machine models.VendingMachine
	err := r.db.WithContext(ctx).Where("api_key_lookup = ?", lookupDigest).First(&machine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *GormMachineRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.VendingMachine, error) {
	var machine models.VendingMachine
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).First(&machine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *GormMachineRepo) UpdateKey(ctx context.Context, id uuid.UUID, signedDigest, lookupDigest string) error {
	res := r.db.WithContext(ctx).Model(&models.VendingMachine{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"api_key_digest": signedDigest,
			"api_key_lookup": lookupDigest,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormMachineRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.VendingMachine, error) {
	var machines []models.VendingMachine
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).Order("name").Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}
