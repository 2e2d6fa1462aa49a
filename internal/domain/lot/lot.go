package lot

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/shared"
)

// LotStatus represents the lifecycle status of a lot
type LotStatus string

const (
	LotStatusActive   LotStatus = "ACTIVE"
	LotStatusExpired  LotStatus = "EXPIRED"
	LotStatusDepleted LotStatus = "DEPLETED"
)

// IsValid checks if the status is a valid LotStatus
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusActive, LotStatusExpired, LotStatusDepleted:
		return true
	}
	return false
}

// String returns the string representation of LotStatus
func (s LotStatus) String() string {
	return string(s)
}

// Lot represents one received batch of one product.
// It is the aggregate root for lot operations. RemainingQuantity is a
// projection of the movement ledger and is only mutated through
// ApplyDelta inside a ledger transaction.
type Lot struct {
	shared.TenantAggregateRoot
	ProductID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_lot_tenant_product_number,priority:2"`
	LotNumber         string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_lot_tenant_product_number,priority:3"`
	InitialQuantity   decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // Immutable after creation
	RemainingQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ManufactureDate   *time.Time       `gorm:"type:date"`
	ReceptionDate     time.Time        `gorm:"type:date;not null;index"`
	ExpirationDate    *time.Time       `gorm:"type:date;index"`
	UnitPurchasePrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	UnitSalePrice     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	StorageLocation   string           `gorm:"type:varchar(100)"`
	Status            LotStatus        `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}

// NewLot creates a new lot with remaining quantity equal to the initial quantity
func NewLot(
	tenantID, productID uuid.UUID,
	lotNumber string,
	initialQuantity decimal.Decimal,
	receptionDate time.Time,
	expirationDate *time.Time,
) (*Lot, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if lotNumber == "" {
		return nil, shared.NewDomainError("INVALID_LOT_NUMBER", "Lot number cannot be empty")
	}
	if initialQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity must be positive")
	}
	if receptionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEPTION_DATE", "Reception date cannot be empty")
	}
	if expirationDate != nil && !expirationDate.After(receptionDate) {
		return nil, shared.NewDomainError("INVALID_EXPIRATION_DATE", "Expiration date must be after reception date")
	}

	l := &Lot{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		LotNumber:           lotNumber,
		InitialQuantity:     initialQuantity,
		RemainingQuantity:   initialQuantity,
		ReceptionDate:       receptionDate,
		ExpirationDate:      expirationDate,
		Status:              LotStatusActive,
	}

	l.AddDomainEvent(NewLotReceivedEvent(l))

	return l, nil
}

// WithManufactureDate sets the manufacture date
func (l *Lot) WithManufactureDate(date time.Time) *Lot {
	l.ManufactureDate = &date
	return l
}

// WithPurchasePrice sets the unit purchase price
func (l *Lot) WithPurchasePrice(price decimal.Decimal) *Lot {
	l.UnitPurchasePrice = &price
	return l
}

// WithSalePrice sets the unit sale price
func (l *Lot) WithSalePrice(price decimal.Decimal) *Lot {
	l.UnitSalePrice = &price
	return l
}

// WithStorageLocation sets the storage location
func (l *Lot) WithStorageLocation(location string) *Lot {
	l.StorageLocation = location
	return l
}

// ApplyDelta applies a signed quantity change against the remaining quantity.
// The resulting remaining quantity must stay within [0, InitialQuantity];
// over-counts must be booked as a new entry on a fresh lot instead.
func (l *Lot) ApplyDelta(delta decimal.Decimal) error {
	if delta.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity delta cannot be zero")
	}

	next := l.RemainingQuantity.Add(delta)
	if next.IsNegative() || next.GreaterThan(l.InitialQuantity) {
		return shared.NewDomainError("QUANTITY_OUT_OF_BOUNDS", "Resulting remaining quantity violates the [0, initial] bound")
	}

	l.RemainingQuantity = next
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	if next.IsZero() {
		l.Status = LotStatusDepleted
		l.AddDomainEvent(NewLotDepletedEvent(l))
	} else if l.Status == LotStatusDepleted {
		// A positive correction brings a depleted lot back into rotation.
		l.Status = LotStatusActive
	}

	return nil
}

// IsExpired returns true if the lot's expiration date has passed at the given time
func (l *Lot) IsExpired(asOf time.Time) bool {
	if l.ExpirationDate == nil {
		return false
	}
	return l.ExpirationDate.Before(asOf)
}

// RefreshStatus lazily evaluates the expired transition. It must be called
// before exposing the lot as a FIFO candidate. Returns true if the status
// changed.
func (l *Lot) RefreshStatus(asOf time.Time) bool {
	if l.Status != LotStatusActive {
		return false
	}
	if !l.IsExpired(asOf) {
		return false
	}

	l.Status = LotStatusExpired
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	l.AddDomainEvent(NewLotExpiredEvent(l))
	return true
}

// DaysUntilExpiry returns the signed number of whole days until expiry at the
// given time; negative when already expired. Returns false when the lot has
// no expiration date.
func (l *Lot) DaysUntilExpiry(asOf time.Time) (int, bool) {
	if l.ExpirationDate == nil {
		return 0, false
	}
	return int(l.ExpirationDate.Sub(asOf).Hours() / 24), true
}

// HasStock returns true if the lot still has remaining quantity
func (l *Lot) HasStock() bool {
	return l.RemainingQuantity.GreaterThan(decimal.Zero)
}

// IsDepleted returns true if the lot has no remaining quantity
func (l *Lot) IsDepleted() bool {
	return l.RemainingQuantity.IsZero()
}

// ConsumedQuantity returns the quantity consumed so far
func (l *Lot) ConsumedQuantity() decimal.Decimal {
	return l.InitialQuantity.Sub(l.RemainingQuantity)
}

// UsagePercent returns the consumed share of the initial quantity in [0, 100]
func (l *Lot) UsagePercent() decimal.Decimal {
	if l.InitialQuantity.IsZero() {
		return decimal.Zero
	}
	return l.ConsumedQuantity().Div(l.InitialQuantity).Mul(decimal.NewFromInt(100)).Round(2)
}

// StockValue returns the remaining quantity valued at the purchase price,
// zero when no purchase price is known
func (l *Lot) StockValue() decimal.Decimal {
	if l.UnitPurchasePrice == nil {
		return decimal.Zero
	}
	return l.RemainingQuantity.Mul(*l.UnitPurchasePrice)
}

// DaysInStock returns the number of days since reception, at least 1
func (l *Lot) DaysInStock(asOf time.Time) int {
	days := int(asOf.Sub(l.ReceptionDate).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
