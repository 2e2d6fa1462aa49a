package lot

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/shared"
)

// MovementType represents the type of a ledger movement
type MovementType string

const (
	// MovementTypeEntry represents stock coming in on reception
	MovementTypeEntry MovementType = "ENTRY"
	// MovementTypeExit represents stock leaving on sale or consumption
	MovementTypeExit MovementType = "EXIT"
	// MovementTypeAdjustment represents a signed correction, the only type
	// allowed to carry either sign (used by reconciliation and manual fixes)
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeTransfer represents one leg of a paired transfer between lots
	MovementTypeTransfer MovementType = "TRANSFER"
	// MovementTypeReturn represents stock returned into the lot
	MovementTypeReturn MovementType = "RETURN"
	// MovementTypeDestruction represents destroyed or discarded stock
	MovementTypeDestruction MovementType = "DESTRUCTION"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeEntry, MovementTypeExit, MovementTypeAdjustment,
		MovementTypeTransfer, MovementTypeReturn, MovementTypeDestruction:
		return true
	}
	return false
}

// AllowsSign returns true if the movement type permits the sign of the given
// quantity. Entry/return only increase, exit/destruction only decrease,
// adjustment and transfer legs may carry either sign.
func (t MovementType) AllowsSign(quantity decimal.Decimal) bool {
	switch t {
	case MovementTypeEntry, MovementTypeReturn:
		return quantity.IsPositive()
	case MovementTypeExit, MovementTypeDestruction:
		return quantity.IsNegative()
	case MovementTypeAdjustment, MovementTypeTransfer:
		return !quantity.IsZero()
	}
	return false
}

// Reference types carried by movements
const (
	ReferenceTypeReception      = "RECEPTION"
	ReferenceTypeSale           = "SALE"
	ReferenceTypeTransfer       = "TRANSFER"
	ReferenceTypeReconciliation = "RECONCILIATION"
	ReferenceTypeManual         = "MANUAL"
)

// Metadata keys used to carry reconciliation provenance
const (
	MetadataKeyTheoreticalQuantity = "theoretical_quantity"
	MetadataKeyPhysicalQuantity    = "physical_quantity"
	MetadataKeySessionID           = "session_id"
)

// Metadata is a free-form key/value bag persisted as JSON
type Metadata map[string]string

// Movement represents one immutable, signed quantity change against exactly
// one lot. Movements are append-only: corrections are new compensating
// movements, never updates or deletes.
type Movement struct {
	shared.BaseEntity
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_tenant_time,priority:1"`
	LotID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_lot"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product"` // Denormalized for fast lookup
	Type           MovementType    `gorm:"type:varchar(20);not null;index:idx_movement_type"`
	SignedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OccurredAt     time.Time       `gorm:"type:timestamptz;not null;index:idx_movement_tenant_time,priority:2"`
	ActingAgentID  uuid.UUID       `gorm:"type:uuid;not null"`
	ReferenceType  string          `gorm:"type:varchar(30);index:idx_movement_reference,priority:1"`
	ReferenceID    string          `gorm:"type:varchar(50);index:idx_movement_reference,priority:2"`
	Metadata       Metadata        `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "lot_movements"
}

// NewMovement creates a new movement against a lot
func NewMovement(
	l *Lot,
	movementType MovementType,
	signedQuantity decimal.Decimal,
	actingAgentID uuid.UUID,
) (*Movement, error) {
	if l == nil {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot cannot be nil")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if signedQuantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}
	if !movementType.AllowsSign(signedQuantity) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity sign does not match the movement type")
	}
	if actingAgentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Acting agent ID cannot be empty")
	}

	return &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       l.TenantID,
		LotID:          l.ID,
		ProductID:      l.ProductID,
		Type:           movementType,
		SignedQuantity: signedQuantity,
		OccurredAt:     time.Now(),
		ActingAgentID:  actingAgentID,
		Metadata:       make(Metadata),
	}, nil
}

// WithReference sets the reference document for the movement
func (m *Movement) WithReference(referenceType, referenceID string) *Movement {
	m.ReferenceType = referenceType
	m.ReferenceID = referenceID
	return m
}

// WithMetadata merges the given key/value pairs into the movement metadata
func (m *Movement) WithMetadata(metadata Metadata) *Movement {
	if m.Metadata == nil {
		m.Metadata = make(Metadata)
	}
	for k, v := range metadata {
		m.Metadata[k] = v
	}
	return m
}

// WithOccurredAt overrides the movement timestamp
func (m *Movement) WithOccurredAt(at time.Time) *Movement {
	m.OccurredAt = at
	return m
}

// IsIncrease returns true if this movement increases the remaining quantity
func (m *Movement) IsIncrease() bool {
	return m.SignedQuantity.IsPositive()
}

// IsDecrease returns true if this movement decreases the remaining quantity
func (m *Movement) IsDecrease() bool {
	return m.SignedQuantity.IsNegative()
}

// AbsQuantity returns the unsigned movement quantity
func (m *Movement) AbsQuantity() decimal.Decimal {
	return m.SignedQuantity.Abs()
}
