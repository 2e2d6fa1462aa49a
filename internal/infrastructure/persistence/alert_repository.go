package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklot/backend/internal/domain/expiration"
	"github.com/stocklot/backend/internal/domain/shared"
)

// GormAlertRepository implements expiration.Repository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID retrieves an alert by ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*expiration.Alert, error) {
	var alert expiration.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindByLot retrieves every alert ever raised for a lot, newest first
func (r *GormAlertRepository) FindByLot(ctx context.Context, tenantID, lotID uuid.UUID) ([]*expiration.Alert, error) {
	var alerts []*expiration.Alert
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lot_id = ?", tenantID, lotID).
		Order("created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindActiveForTenant retrieves the open alerts of a tenant, most urgent
// first. Urgency sorts by days remaining, which tracks the urgency bands.
func (r *GormAlertRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]*expiration.Alert, error) {
	var alerts []*expiration.Alert
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, expiration.AlertStatusActive).
		Order("days_remaining ASC, created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindByStatus retrieves alerts in the given status
func (r *GormAlertRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status expiration.AlertStatus) ([]*expiration.Alert, error) {
	var alerts []*expiration.Alert
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Save persists an alert
func (r *GormAlertRepository) Save(ctx context.Context, alert *expiration.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// CountActiveForTenant counts the open alerts of a tenant
func (r *GormAlertRepository) CountActiveForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&expiration.Alert{}).
		Where("tenant_id = ? AND status = ?", tenantID, expiration.AlertStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAlertRepository implements expiration.Repository
var _ expiration.Repository = (*GormAlertRepository)(nil)
