package lot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/shared"
)

// ListOptions controls which lot lifecycle states a listing includes
type ListOptions struct {
	IncludeExpired  bool
	IncludeDepleted bool
}

// Repository defines the interface for lot persistence
type Repository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByIDForTenant finds a lot by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lot, error)

	// FindByProduct finds lots for a product, honoring the list options
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, opts ListOptions) ([]Lot, error)

	// FindByLotNumber finds a lot by its number within a tenant and product
	FindByLotNumber(ctx context.Context, tenantID, productID uuid.UUID, lotNumber string) (*Lot, error)

	// FindAllForTenant finds all lots for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Lot, error)

	// FindWithExpiration finds lots that carry an expiration date and still
	// have remaining stock (input of the alert sweep)
	FindWithExpiration(ctx context.Context, tenantID uuid.UUID) ([]Lot, error)

	// Save creates or updates a lot
	Save(ctx context.Context, l *Lot) error

	// SaveWithLock saves with an optimistic version check; returns
	// shared.ErrConcurrencyConflict when the stored version moved
	SaveWithLock(ctx context.Context, l *Lot) error

	// ExistsByLotNumber checks lot number uniqueness per tenant and product
	ExistsByLotNumber(ctx context.Context, tenantID, productID uuid.UUID, lotNumber string) (bool, error)

	// CountForTenant counts lots matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// MovementRepository defines the interface for the append-only movement
// ledger. There is deliberately no update or delete operation: corrections
// are new compensating movements.
type MovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByLot finds movements for a lot ordered by occurred_at ascending;
	// from/to bound the time range when non-nil
	FindByLot(ctx context.Context, lotID uuid.UUID, from, to *time.Time) ([]Movement, error)

	// FindByProduct finds movements for a product ordered by occurred_at ascending
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindByReference finds movements by reference document
	FindByReference(ctx context.Context, referenceType, referenceID string) ([]Movement, error)

	// Create appends a movement to the ledger
	Create(ctx context.Context, m *Movement) error

	// CreateBatch appends multiple movements to the ledger
	CreateBatch(ctx context.Context, ms []*Movement) error

	// SumSignedQuantityByLot sums all signed movement quantities for a lot.
	// Because the initial entry is itself a movement, the invariant
	// remaining == sum holds at all times.
	SumSignedQuantityByLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error)

	// CountByLot counts movements for a lot
	CountByLot(ctx context.Context, lotID uuid.UUID) (int64, error)
}
