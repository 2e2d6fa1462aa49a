package reconciliation

import (
	"github.com/google/uuid"

	"github.com/stocklot/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeSession = "ReconciliationSession"

// Event type constants
const (
	EventTypeSessionStarted   = "ReconciliationSessionStarted"
	EventTypeSessionCompleted = "ReconciliationSessionCompleted"
	EventTypeSessionCancelled = "ReconciliationSessionCancelled"
)

// SessionStartedEvent is raised when a reconciliation session opens
type SessionStartedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	TotalLots int       `json:"total_lots"`
	StartedBy uuid.UUID `json:"started_by"`
}

// NewSessionStartedEvent creates a new SessionStartedEvent
func NewSessionStartedEvent(s *Session) *SessionStartedEvent {
	return &SessionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionStarted, AggregateTypeSession, s.ID, s.TenantID),
		SessionID:       s.ID,
		TotalLots:       len(s.Lines),
		StartedBy:       s.StartedBy,
	}
}

// EventType returns the event type name
func (e *SessionStartedEvent) EventType() string {
	return EventTypeSessionStarted
}

// SessionCompletedEvent is raised when a session's adjustments are booked
type SessionCompletedEvent struct {
	shared.BaseDomainEvent
	SessionID          uuid.UUID `json:"session_id"`
	DiscrepanciesCount int       `json:"discrepancies_count"`
	TotalLots          int       `json:"total_lots"`
}

// NewSessionCompletedEvent creates a new SessionCompletedEvent
func NewSessionCompletedEvent(s *Session, discrepancies int) *SessionCompletedEvent {
	return &SessionCompletedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeSessionCompleted, AggregateTypeSession, s.ID, s.TenantID),
		SessionID:          s.ID,
		DiscrepanciesCount: discrepancies,
		TotalLots:          len(s.Lines),
	}
}

// EventType returns the event type name
func (e *SessionCompletedEvent) EventType() string {
	return EventTypeSessionCompleted
}

// SessionCancelledEvent is raised when a session is abandoned
type SessionCancelledEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
}

// NewSessionCancelledEvent creates a new SessionCancelledEvent
func NewSessionCancelledEvent(s *Session) *SessionCancelledEvent {
	return &SessionCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionCancelled, AggregateTypeSession, s.ID, s.TenantID),
		SessionID:       s.ID,
	}
}

// EventType returns the event type name
func (e *SessionCancelledEvent) EventType() string {
	return EventTypeSessionCancelled
}
