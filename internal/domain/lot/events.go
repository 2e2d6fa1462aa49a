package lot

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeLot = "Lot"

// Event type constants
const (
	EventTypeLotReceived     = "LotReceived"
	EventTypeMovementApplied = "MovementApplied"
	EventTypeLotDepleted     = "LotDepleted"
	EventTypeLotExpired      = "LotExpired"
)

// LotReceivedEvent is raised when a new lot enters the inventory
type LotReceivedEvent struct {
	shared.BaseDomainEvent
	LotID           uuid.UUID       `json:"lot_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	LotNumber       string          `json:"lot_number"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
}

// NewLotReceivedEvent creates a new LotReceivedEvent
func NewLotReceivedEvent(l *Lot) *LotReceivedEvent {
	return &LotReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotReceived, AggregateTypeLot, l.ID, l.TenantID),
		LotID:           l.ID,
		ProductID:       l.ProductID,
		LotNumber:       l.LotNumber,
		InitialQuantity: l.InitialQuantity,
	}
}

// EventType returns the event type name
func (e *LotReceivedEvent) EventType() string {
	return EventTypeLotReceived
}

// MovementAppliedEvent is raised when a movement is committed to the ledger
type MovementAppliedEvent struct {
	shared.BaseDomainEvent
	MovementID     uuid.UUID       `json:"movement_id"`
	LotID          uuid.UUID       `json:"lot_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	MovementType   MovementType    `json:"movement_type"`
	SignedQuantity decimal.Decimal `json:"signed_quantity"`
	Remaining      decimal.Decimal `json:"remaining_quantity"`
}

// NewMovementAppliedEvent creates a new MovementAppliedEvent
func NewMovementAppliedEvent(l *Lot, m *Movement) *MovementAppliedEvent {
	return &MovementAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementApplied, AggregateTypeLot, l.ID, l.TenantID),
		MovementID:      m.ID,
		LotID:           l.ID,
		ProductID:       l.ProductID,
		MovementType:    m.Type,
		SignedQuantity:  m.SignedQuantity,
		Remaining:       l.RemainingQuantity,
	}
}

// EventType returns the event type name
func (e *MovementAppliedEvent) EventType() string {
	return EventTypeMovementApplied
}

// LotDepletedEvent is raised when a lot's remaining quantity reaches zero
type LotDepletedEvent struct {
	shared.BaseDomainEvent
	LotID     uuid.UUID `json:"lot_id"`
	ProductID uuid.UUID `json:"product_id"`
	LotNumber string    `json:"lot_number"`
}

// NewLotDepletedEvent creates a new LotDepletedEvent
func NewLotDepletedEvent(l *Lot) *LotDepletedEvent {
	return &LotDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotDepleted, AggregateTypeLot, l.ID, l.TenantID),
		LotID:           l.ID,
		ProductID:       l.ProductID,
		LotNumber:       l.LotNumber,
	}
}

// EventType returns the event type name
func (e *LotDepletedEvent) EventType() string {
	return EventTypeLotDepleted
}

// LotExpiredEvent is raised when the lazy status evaluation marks a lot expired
type LotExpiredEvent struct {
	shared.BaseDomainEvent
	LotID     uuid.UUID       `json:"lot_id"`
	ProductID uuid.UUID       `json:"product_id"`
	LotNumber string          `json:"lot_number"`
	Remaining decimal.Decimal `json:"remaining_quantity"`
}

// NewLotExpiredEvent creates a new LotExpiredEvent
func NewLotExpiredEvent(l *Lot) *LotExpiredEvent {
	return &LotExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotExpired, AggregateTypeLot, l.ID, l.TenantID),
		LotID:           l.ID,
		ProductID:       l.ProductID,
		LotNumber:       l.LotNumber,
		Remaining:       l.RemainingQuantity,
	}
}

// EventType returns the event type name
func (e *LotExpiredEvent) EventType() string {
	return EventTypeLotExpired
}
