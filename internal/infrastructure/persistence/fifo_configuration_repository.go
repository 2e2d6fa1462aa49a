package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklot/backend/internal/domain/fifoconfig"
	"github.com/stocklot/backend/internal/domain/shared"
)

// GormConfigurationRepository implements fifoconfig.Repository using GORM
type GormConfigurationRepository struct {
	db *gorm.DB
}

// NewGormConfigurationRepository creates a new GormConfigurationRepository
func NewGormConfigurationRepository(db *gorm.DB) *GormConfigurationRepository {
	return &GormConfigurationRepository{db: db}
}

// FindByID retrieves a configuration by ID
func (r *GormConfigurationRepository) FindByID(ctx context.Context, id uuid.UUID) (*fifoconfig.Configuration, error) {
	var config fifoconfig.Configuration
	if err := r.db.WithContext(ctx).First(&config, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &config, nil
}

// FindActiveForTenant retrieves all active configurations of a tenant
func (r *GormConfigurationRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*fifoconfig.Configuration, error) {
	var configs []*fifoconfig.Configuration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("priority DESC, created_at DESC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// FindCandidates retrieves the active configurations that could govern the
// given product: product-scoped, family-scoped and tenant-global rules in a
// single query. The resolver picks the winner.
func (r *GormConfigurationRepository) FindCandidates(ctx context.Context, tenantID, productID, familyID uuid.UUID) ([]*fifoconfig.Configuration, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true)

	if familyID != uuid.Nil {
		query = query.Where(
			"product_id = ? OR family_id = ? OR (product_id IS NULL AND family_id IS NULL)",
			productID, familyID,
		)
	} else {
		query = query.Where(
			"product_id = ? OR (product_id IS NULL AND family_id IS NULL)",
			productID,
		)
	}

	var configs []*fifoconfig.Configuration
	if err := query.Order("created_at DESC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// FindAllForTenant retrieves every configuration of a tenant, active or not
func (r *GormConfigurationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*fifoconfig.Configuration, error) {
	var configs []*fifoconfig.Configuration
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// Save persists a configuration
func (r *GormConfigurationRepository) Save(ctx context.Context, config *fifoconfig.Configuration) error {
	return r.db.WithContext(ctx).Save(config).Error
}

// Delete removes a configuration
func (r *GormConfigurationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&fifoconfig.Configuration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormConfigurationRepository implements fifoconfig.Repository
var _ fifoconfig.Repository = (*GormConfigurationRepository)(nil)
