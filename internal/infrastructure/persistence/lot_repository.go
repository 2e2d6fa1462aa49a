package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/shared"
)

// GormLotRepository implements lot.Repository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*lot.Lot, error) {
	var l lot.Lot
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByIDForTenant finds a lot by ID within a tenant
func (r *GormLotRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*lot.Lot, error) {
	var l lot.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByProduct finds lots for a product ordered by reception date, honoring
// the list options
func (r *GormLotRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, opts lot.ListOptions) ([]lot.Lot, error) {
	query := r.db.WithContext(ctx).Model(&lot.Lot{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	if !opts.IncludeExpired {
		query = query.Where("status <> ?", lot.LotStatusExpired)
	}
	if !opts.IncludeDepleted {
		query = query.Where("status <> ?", lot.LotStatusDepleted)
	}

	var lots []lot.Lot
	if err := query.Order("reception_date ASC").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByLotNumber finds a lot by its number within a tenant and product
func (r *GormLotRepository) FindByLotNumber(ctx context.Context, tenantID, productID uuid.UUID, lotNumber string) (*lot.Lot, error) {
	var l lot.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND lot_number = ?", tenantID, productID, lotNumber).
		First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindAllForTenant finds all lots for a tenant
func (r *GormLotRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]lot.Lot, error) {
	var lots []lot.Lot
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&lot.Lot{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindWithExpiration finds lots carrying an expiration date with remaining stock
func (r *GormLotRepository) FindWithExpiration(ctx context.Context, tenantID uuid.UUID) ([]lot.Lot, error) {
	var lots []lot.Lot
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expiration_date IS NOT NULL AND remaining_quantity > 0", tenantID).
		Order("expiration_date ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// TenantsWithExpiringStock lists the tenants currently holding dated stock.
// The background sweep uses it to scope alert generation; it is not part of
// the domain repository contract.
func (r *GormLotRepository) TenantsWithExpiringStock(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&lot.Lot{}).
		Distinct().
		Where("expiration_date IS NOT NULL AND remaining_quantity > 0").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

// Save creates or updates a lot
func (r *GormLotRepository) Save(ctx context.Context, l *lot.Lot) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// SaveWithLock saves with optimistic locking on the version column
func (r *GormLotRepository) SaveWithLock(ctx context.Context, l *lot.Lot) error {
	result := r.db.WithContext(ctx).
		Model(l).
		Where("id = ? AND version = ?", l.ID, l.Version-1).
		Updates(map[string]interface{}{
			"remaining_quantity": l.RemainingQuantity,
			"status":             l.Status,
			"version":            l.Version,
			"updated_at":         l.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ExistsByLotNumber checks lot number uniqueness per tenant and product
func (r *GormLotRepository) ExistsByLotNumber(ctx context.Context, tenantID, productID uuid.UUID, lotNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&lot.Lot{}).
		Where("tenant_id = ? AND product_id = ? AND lot_number = ?", tenantID, productID, lotNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForTenant counts lots matching the filter
func (r *GormLotRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&lot.Lot{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

func (r *GormLotRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.HasStock {
		query = query.Where("remaining_quantity > 0")
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expiration_date IS NOT NULL AND expiration_date < ?", *filter.ExpiresBefore)
	}
	if filter.StorageLocation != "" {
		query = query.Where("storage_location = ?", filter.StorageLocation)
	}
	return query
}

// Ensure GormLotRepository implements lot.Repository
var _ lot.Repository = (*GormLotRepository)(nil)
