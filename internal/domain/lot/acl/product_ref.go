package acl

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/shared"
)

// ProductReference is the ledger's local view of a catalog product. It
// carries only the fields the FIFO resolver and advisors consume: the
// family for configuration scoping, the pricing category, and the detail
// breakdown ratio for unit decomposition.
type ProductReference struct {
	id                   uuid.UUID
	familyID             uuid.UUID
	pricingCategory      string
	detailBreakdownRatio decimal.Decimal
}

// NewProductReference creates a new ProductReference
func NewProductReference(id, familyID uuid.UUID, pricingCategory string, detailBreakdownRatio decimal.Decimal) (ProductReference, error) {
	if id == uuid.Nil {
		return ProductReference{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return ProductReference{
		id:                   id,
		familyID:             familyID,
		pricingCategory:      pricingCategory,
		detailBreakdownRatio: detailBreakdownRatio,
	}, nil
}

// ID returns the product ID
func (r ProductReference) ID() uuid.UUID {
	return r.id
}

// FamilyID returns the product family ID, uuid.Nil when the product has no family
func (r ProductReference) FamilyID() uuid.UUID {
	return r.familyID
}

// PricingCategory returns the catalog pricing category
func (r ProductReference) PricingCategory() string {
	return r.pricingCategory
}

// DetailBreakdownRatio returns the detail breakdown ratio (sub-units per unit)
func (r ProductReference) DetailBreakdownRatio() decimal.Decimal {
	return r.detailBreakdownRatio
}

// IsEmpty returns true if the reference is empty
func (r ProductReference) IsEmpty() bool {
	return r.id == uuid.Nil
}

// ProductDirectory defines the read-only port to the catalog service.
// Implemented in the infrastructure layer.
type ProductDirectory interface {
	// GetProductReference retrieves the ledger-local view of a product
	GetProductReference(ctx context.Context, tenantID, productID uuid.UUID) (ProductReference, error)

	// ProductExists checks product existence without fetching details
	ProductExists(ctx context.Context, tenantID, productID uuid.UUID) (bool, error)
}
