package expiration

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeAlert = "ExpirationAlert"

// Event type constants
const (
	EventTypeAlertRaised  = "AlertRaised"
	EventTypeAlertHandled = "AlertHandled"
)

// AlertRaisedEvent is raised when the sweep opens a new expiration alert
type AlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID       uuid.UUID       `json:"alert_id"`
	LotID         uuid.UUID       `json:"lot_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Urgency       Urgency         `json:"urgency"`
	DaysRemaining int             `json:"days_remaining"`
	EstimatedLoss decimal.Decimal `json:"estimated_loss"`
}

// NewAlertRaisedEvent creates a new AlertRaisedEvent
func NewAlertRaisedEvent(a *Alert) *AlertRaisedEvent {
	return &AlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAlertRaised, AggregateTypeAlert, a.ID, a.TenantID),
		AlertID:         a.ID,
		LotID:           a.LotID,
		ProductID:       a.ProductID,
		Urgency:         a.Urgency,
		DaysRemaining:   a.DaysRemaining,
		EstimatedLoss:   a.EstimatedLoss,
	}
}

// EventType returns the event type name
func (e *AlertRaisedEvent) EventType() string {
	return EventTypeAlertRaised
}

// AlertHandledEvent is raised when an active alert is treated or ignored
type AlertHandledEvent struct {
	shared.BaseDomainEvent
	AlertID uuid.UUID   `json:"alert_id"`
	LotID   uuid.UUID   `json:"lot_id"`
	Status  AlertStatus `json:"status"`
}

// NewAlertHandledEvent creates a new AlertHandledEvent
func NewAlertHandledEvent(a *Alert) *AlertHandledEvent {
	return &AlertHandledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAlertHandled, AggregateTypeAlert, a.ID, a.TenantID),
		AlertID:         a.ID,
		LotID:           a.LotID,
		Status:          a.Status,
	}
}

// EventType returns the event type name
func (e *AlertHandledEvent) EventType() string {
	return EventTypeAlertHandled
}
