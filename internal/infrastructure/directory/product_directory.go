// Package directory implements the read-only ports to the catalog and
// identity services over locally synchronized reference tables.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stocklot/backend/internal/domain/lot/acl"
	"github.com/stocklot/backend/internal/domain/shared"
)

// productReferenceRow is the persisted read model of a catalog product.
// Rows are upserted by the catalog sync, never written by the ledger.
type productReferenceRow struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	FamilyID             *uuid.UUID      `gorm:"type:uuid"`
	PricingCategory      string          `gorm:"type:varchar(50)"`
	DetailBreakdownRatio decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	SyncedAt             time.Time       `gorm:"not null"`
}

func (productReferenceRow) TableName() string {
	return "product_references"
}

// GormProductDirectory implements acl.ProductDirectory over the synchronized
// product reference table
type GormProductDirectory struct {
	db *gorm.DB
}

// NewGormProductDirectory creates a new GormProductDirectory
func NewGormProductDirectory(db *gorm.DB) *GormProductDirectory {
	return &GormProductDirectory{db: db}
}

// GetProductReference retrieves the ledger-local view of a product
func (d *GormProductDirectory) GetProductReference(ctx context.Context, tenantID, productID uuid.UUID) (acl.ProductReference, error) {
	var row productReferenceRow
	if err := d.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return acl.ProductReference{}, shared.ErrNotFound
		}
		return acl.ProductReference{}, err
	}

	familyID := uuid.Nil
	if row.FamilyID != nil {
		familyID = *row.FamilyID
	}
	return acl.NewProductReference(row.ID, familyID, row.PricingCategory, row.DetailBreakdownRatio)
}

// ProductExists checks product existence without fetching details
func (d *GormProductDirectory) ProductExists(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).
		Model(&productReferenceRow{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormProductDirectory implements acl.ProductDirectory
var _ acl.ProductDirectory = (*GormProductDirectory)(nil)
