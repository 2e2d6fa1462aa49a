package expiration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/shared"
)

// AlertStatus is the lifecycle status of an expiration alert
type AlertStatus string

const (
	AlertStatusActive  AlertStatus = "ACTIVE"
	AlertStatusTreated AlertStatus = "TREATED"
	AlertStatusIgnored AlertStatus = "IGNORED"
)

// IsValid checks if the status is a valid AlertStatus
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusActive, AlertStatusTreated, AlertStatusIgnored:
		return true
	}
	return false
}

// IsTerminal returns true once the alert has been handled
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusTreated || s == AlertStatusIgnored
}

// Alert is a persisted expiration warning for one lot. An alert snapshots
// the lot state at raise time; the sweep uses that snapshot to decide
// whether a handled alert may be raised again after a material change.
type Alert struct {
	shared.TenantAggregateRoot
	LotID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotNumber         string          `gorm:"type:varchar(100);not null"`
	Urgency           Urgency         `gorm:"type:varchar(20);not null;index"`
	DaysRemaining     int             `gorm:"not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpirationDate    time.Time       `gorm:"type:date;not null"`
	EstimatedLoss     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status            AlertStatus     `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	HandledAt         *time.Time
	HandledBy         *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Alert) TableName() string {
	return "expiration_alerts"
}

// NewAlert raises an alert for a lot from its risk assessment. Lots without
// an expiration date never produce alerts.
func NewAlert(l *lot.Lot, assessment RiskAssessment) (*Alert, error) {
	if !assessment.HasExpiry || l.ExpirationDate == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cannot raise an expiration alert for a lot without an expiration date")
	}

	a := &Alert{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(l.TenantID),
		LotID:               l.ID,
		ProductID:           l.ProductID,
		LotNumber:           l.LotNumber,
		Urgency:             assessment.Urgency,
		DaysRemaining:       assessment.DaysRemaining,
		RemainingQuantity:   l.RemainingQuantity,
		ExpirationDate:      *l.ExpirationDate,
		EstimatedLoss:       assessment.EstimatedLoss,
		Status:              AlertStatusActive,
	}

	a.AddDomainEvent(NewAlertRaisedEvent(a))

	return a, nil
}

// MarkTreated closes the alert as handled by the given agent
func (a *Alert) MarkTreated(agentID uuid.UUID, at time.Time) error {
	return a.handle(AlertStatusTreated, agentID, at)
}

// MarkIgnored closes the alert as deliberately ignored by the given agent
func (a *Alert) MarkIgnored(agentID uuid.UUID, at time.Time) error {
	return a.handle(AlertStatusIgnored, agentID, at)
}

func (a *Alert) handle(target AlertStatus, agentID uuid.UUID, at time.Time) error {
	if a.Status != AlertStatusActive {
		return shared.ErrInvalidTransition
	}
	if agentID == uuid.Nil {
		return shared.NewDomainError("INVALID_AGENT", "Handling agent cannot be empty")
	}

	a.Status = target
	a.HandledAt = &at
	a.HandledBy = &agentID
	a.UpdatedAt = at
	a.IncrementVersion()
	a.AddDomainEvent(NewAlertHandledEvent(a))
	return nil
}

// CoversLotState reports whether the alert's snapshot still matches the
// lot. While it does, the sweep must not raise a duplicate, and a handled
// alert must not be resurrected.
func (a *Alert) CoversLotState(l *lot.Lot) bool {
	if l.ExpirationDate == nil {
		return false
	}
	return a.RemainingQuantity.Equal(l.RemainingQuantity) && a.ExpirationDate.Equal(*l.ExpirationDate)
}

// Refresh updates the volatile risk fields of an active alert in place.
// Handled alerts are left untouched.
func (a *Alert) Refresh(assessment RiskAssessment) bool {
	if a.Status != AlertStatusActive {
		return false
	}
	if a.Urgency == assessment.Urgency &&
		a.DaysRemaining == assessment.DaysRemaining &&
		a.RemainingQuantity.Equal(assessment.RemainingQuantity) &&
		a.EstimatedLoss.Equal(assessment.EstimatedLoss) {
		return false
	}

	a.Urgency = assessment.Urgency
	a.DaysRemaining = assessment.DaysRemaining
	a.RemainingQuantity = assessment.RemainingQuantity
	a.EstimatedLoss = assessment.EstimatedLoss
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return true
}
