package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Erixon159/autemix-app/shared/models"
)

// GormTenantRepo is the PostgreSQL-backed tenant repository
type GormTenantRepo struct {
	db *gorm.DB
}

// NewGormTenantRepo creates a tenant repository backed by the given database
func NewGormTenantRepo(db *gorm.DB) *GormTenantRepo {
	return &GormTenantRepo{db: db}
}

func (r *GormTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	err := r.db.WithContext(ctx).Create(tenant).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *GormTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *GormTenantRepo) FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	normalized := models.NormalizeSubdomain(subdomain)
	if normalized == "" {
		return nil, ErrNotFound
	}

	var tenant models.Tenant
	err := r.db.WithContext(ctx).Where("LOWER(subdomain) = ?", normalized).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *GormTenantRepo) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	normalized := models.NormalizeSubdomain(subdomain)

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("LOWER(subdomain) = ?", normalized).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTenantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTenantRepo) List(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := r.db.WithContext(ctx).Order("subdomain").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
