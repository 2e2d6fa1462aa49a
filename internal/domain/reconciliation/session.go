package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
	"github.com/stocklot/backend/internal/domain/shared"
)

// SessionStatus is the lifecycle status of a reconciliation session
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for the terminal statuses
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// Line is one lot inside a reconciliation session. TheoreticalQuantity is
// snapshotted when the session starts and never changes afterwards, even
// when the live ledger moves on. PhysicalQuantity holds the latest count;
// recounting the same lot overwrites it.
type Line struct {
	shared.BaseEntity
	SessionID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_recon_line_session_lot,priority:1"`
	LotID               uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_recon_line_session_lot,priority:2"`
	ProductID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	LotNumber           string           `gorm:"type:varchar(100);not null"`
	TheoreticalQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	PhysicalQuantity    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CountedAt           *time.Time
	CountedBy           *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Line) TableName() string {
	return "reconciliation_lines"
}

// IsCounted returns true once a physical count has been recorded
func (l *Line) IsCounted() bool {
	return l.PhysicalQuantity != nil
}

// DiscrepancyStatus classifies a non-zero count difference
type DiscrepancyStatus string

const (
	DiscrepancyMissing DiscrepancyStatus = "MISSING"
	DiscrepancySurplus DiscrepancyStatus = "SURPLUS"
	DiscrepancyDeficit DiscrepancyStatus = "DEFICIT"
)

// Discrepancy is a computed difference between a counted quantity and the
// session snapshot. Discrepancies are derived, never stored; recomputing
// them over the same counts yields the same result.
type Discrepancy struct {
	LotID       uuid.UUID
	ProductID   uuid.UUID
	LotNumber   string
	Theoretical decimal.Decimal
	Physical    decimal.Decimal
	Delta       decimal.Decimal
	Status      DiscrepancyStatus
}

// Session is a physical stock count against the ledger's theoretical
// state. It is the aggregate root for the reconciliation workflow.
type Session struct {
	shared.TenantAggregateRoot
	Label       string        `gorm:"type:varchar(200)"`
	Status      SessionStatus `gorm:"type:varchar(20);not null;default:'IN_PROGRESS';index"`
	StartedBy   uuid.UUID     `gorm:"type:uuid;not null"`
	StartedAt   time.Time     `gorm:"not null"`
	CompletedAt *time.Time
	CompletedBy *uuid.UUID `gorm:"type:uuid"`
	Lines       []*Line    `gorm:"foreignKey:SessionID"`
}

// TableName returns the table name for GORM
func (Session) TableName() string {
	return "reconciliation_sessions"
}

// NewSession opens a session over the given lots, snapshotting their
// remaining quantities as the theoretical state
func NewSession(tenantID, startedBy uuid.UUID, label string, lots []*lot.Lot, at time.Time) (*Session, error) {
	if startedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Starting agent cannot be empty")
	}
	if len(lots) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reconciliation session needs at least one lot")
	}

	s := &Session{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Label:               label,
		Status:              SessionStatusInProgress,
		StartedBy:           startedBy,
		StartedAt:           at,
	}

	seen := make(map[uuid.UUID]struct{}, len(lots))
	for _, l := range lots {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		s.Lines = append(s.Lines, &Line{
			BaseEntity:          shared.NewBaseEntity(),
			SessionID:           s.ID,
			LotID:               l.ID,
			ProductID:           l.ProductID,
			LotNumber:           l.LotNumber,
			TheoreticalQuantity: l.RemainingQuantity,
		})
	}

	s.AddDomainEvent(NewSessionStartedEvent(s))

	return s, nil
}

// LineForLot returns the session line of a lot, nil when the lot is not
// part of the snapshot
func (s *Session) LineForLot(lotID uuid.UUID) *Line {
	for _, line := range s.Lines {
		if line.LotID == lotID {
			return line
		}
	}
	return nil
}

// RecordPhysicalCount records the counted quantity for a lot in the
// snapshot. Recounting overwrites the previous value; the last count wins.
func (s *Session) RecordPhysicalCount(lotID uuid.UUID, quantity decimal.Decimal, countedBy uuid.UUID, at time.Time) error {
	if s.Status != SessionStatusInProgress {
		return shared.ErrInvalidTransition
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Physical count cannot be negative")
	}
	if countedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_AGENT", "Counting agent cannot be empty")
	}

	line := s.LineForLot(lotID)
	if line == nil {
		return shared.ErrNotFound
	}

	q := quantity
	line.PhysicalQuantity = &q
	line.CountedAt = &at
	line.CountedBy = &countedBy
	s.UpdatedAt = at
	s.IncrementVersion()

	return nil
}

// CountedLines returns how many lines have a physical count recorded
func (s *Session) CountedLines() int {
	n := 0
	for _, line := range s.Lines {
		if line.IsCounted() {
			n++
		}
	}
	return n
}

// ComputeDiscrepancies derives the non-zero differences between counted
// and theoretical quantities. Uncounted lines are skipped; zero deltas are
// excluded. The computation is pure and can be repeated.
func (s *Session) ComputeDiscrepancies() []Discrepancy {
	var result []Discrepancy
	for _, line := range s.Lines {
		if !line.IsCounted() {
			continue
		}
		delta := line.PhysicalQuantity.Sub(line.TheoreticalQuantity)
		if delta.IsZero() {
			continue
		}

		status := DiscrepancyDeficit
		switch {
		case line.PhysicalQuantity.IsZero() && line.TheoreticalQuantity.GreaterThan(decimal.Zero):
			status = DiscrepancyMissing
		case delta.GreaterThan(decimal.Zero):
			status = DiscrepancySurplus
		}

		result = append(result, Discrepancy{
			LotID:       line.LotID,
			ProductID:   line.ProductID,
			LotNumber:   line.LotNumber,
			Theoretical: line.TheoreticalQuantity,
			Physical:    *line.PhysicalQuantity,
			Delta:       delta,
			Status:      status,
		})
	}
	return result
}

// Complete flips the session to completed and returns the discrepancies
// the caller must book as adjustment movements. Fails with
// EMPTY_RECONCILIATION when no count deviates from the snapshot.
func (s *Session) Complete(completedBy uuid.UUID, at time.Time) ([]Discrepancy, error) {
	if s.Status != SessionStatusInProgress {
		return nil, shared.ErrInvalidTransition
	}
	if completedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AGENT", "Completing agent cannot be empty")
	}

	discrepancies := s.ComputeDiscrepancies()
	if len(discrepancies) == 0 {
		return nil, shared.ErrEmptyReconciliation
	}

	s.Status = SessionStatusCompleted
	s.CompletedAt = &at
	s.CompletedBy = &completedBy
	s.UpdatedAt = at
	s.IncrementVersion()
	s.AddDomainEvent(NewSessionCompletedEvent(s, len(discrepancies)))

	return discrepancies, nil
}

// Cancel abandons the session without touching the ledger
func (s *Session) Cancel(cancelledBy uuid.UUID, at time.Time) error {
	if s.Status != SessionStatusInProgress {
		return shared.ErrInvalidTransition
	}

	s.Status = SessionStatusCancelled
	s.CompletedAt = &at
	s.CompletedBy = &cancelledBy
	s.UpdatedAt = at
	s.IncrementVersion()
	s.AddDomainEvent(NewSessionCancelledEvent(s))

	return nil
}
