package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/shared"
)

// GormMovementRepository implements lot.MovementRepository using GORM.
// The ledger is append-only: this repository exposes no update or delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*lot.Movement, error) {
	var m lot.Movement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByLot finds movements for a lot ordered by occurred_at ascending
func (r *GormMovementRepository) FindByLot(ctx context.Context, lotID uuid.UUID, from, to *time.Time) ([]lot.Movement, error) {
	query := r.db.WithContext(ctx).Where("lot_id = ?", lotID)
	if from != nil {
		query = query.Where("occurred_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("occurred_at <= ?", *to)
	}

	var movements []lot.Movement
	if err := query.Order("occurred_at ASC, created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByProduct finds movements for a product ordered by occurred_at ascending
func (r *GormMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]lot.Movement, error) {
	query := r.db.WithContext(ctx).
		Model(&lot.Movement{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	if filter.MovementType != "" {
		query = query.Where("type = ?", filter.MovementType)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var movements []lot.Movement
	if err := query.Order("occurred_at ASC, created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements by reference document
func (r *GormMovementRepository) FindByReference(ctx context.Context, referenceType, referenceID string) ([]lot.Movement, error) {
	var movements []lot.Movement
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create appends a movement to the ledger
func (r *GormMovementRepository) Create(ctx context.Context, m *lot.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// CreateBatch appends multiple movements to the ledger
func (r *GormMovementRepository) CreateBatch(ctx context.Context, ms []*lot.Movement) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(ms).Error
}

// SumSignedQuantityByLot sums all signed movement quantities for a lot
func (r *GormMovementRepository) SumSignedQuantityByLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&lot.Movement{}).
		Where("lot_id = ?", lotID).
		Select("COALESCE(SUM(signed_quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// CountByLot counts movements for a lot
func (r *GormMovementRepository) CountByLot(ctx context.Context, lotID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&lot.Movement{}).
		Where("lot_id = ?", lotID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormMovementRepository implements lot.MovementRepository
var _ lot.MovementRepository = (*GormMovementRepository)(nil)
