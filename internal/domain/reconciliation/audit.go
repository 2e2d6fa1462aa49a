package reconciliation

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stocklot/backend/internal/domain/shared"
)

// Audit action constants
const (
	ActionReconciliationCompleted = "RECONCILIATION_COMPLETED"
	ActionReconciliationCancelled = "RECONCILIATION_CANCELLED"
)

// AuditRecord is an immutable trace row written when a reconciliation
// session reaches a terminal state. It is booked in the same transaction
// as the adjustment movements.
type AuditRecord struct {
	shared.BaseEntity
	TenantID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	Action             string            `gorm:"type:varchar(50);not null;index"`
	SessionID          uuid.UUID         `gorm:"type:uuid;not null;index"`
	AgentID            uuid.UUID         `gorm:"type:uuid;not null"`
	DiscrepanciesCount int               `gorm:"not null"`
	TotalLots          int               `gorm:"not null"`
	RecordedAt         time.Time         `gorm:"not null;index"`
	Details            map[string]string `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (AuditRecord) TableName() string {
	return "reconciliation_audit_records"
}

// NewCompletionAuditRecord builds the audit row for a completed session
func NewCompletionAuditRecord(s *Session, discrepancies int, agentID uuid.UUID, at time.Time) *AuditRecord {
	return &AuditRecord{
		BaseEntity:         shared.NewBaseEntity(),
		TenantID:           s.TenantID,
		Action:             ActionReconciliationCompleted,
		SessionID:          s.ID,
		AgentID:            agentID,
		DiscrepanciesCount: discrepancies,
		TotalLots:          len(s.Lines),
		RecordedAt:         at,
		Details: map[string]string{
			"counted_lines": strconv.Itoa(s.CountedLines()),
		},
	}
}

// NewCancellationAuditRecord builds the audit row for a cancelled session
func NewCancellationAuditRecord(s *Session, agentID uuid.UUID, at time.Time) *AuditRecord {
	return &AuditRecord{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   s.TenantID,
		Action:     ActionReconciliationCancelled,
		SessionID:  s.ID,
		AgentID:    agentID,
		TotalLots:  len(s.Lines),
		RecordedAt: at,
		Details: map[string]string{
			"counted_lines": strconv.Itoa(s.CountedLines()),
		},
	}
}

// AuditRepository defines the persistence port for reconciliation audit records
type AuditRepository interface {
	// Create appends an audit record; records are never updated or deleted
	Create(ctx context.Context, record *AuditRecord) error

	// FindBySession retrieves the audit records of one session
	FindBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*AuditRecord, error)

	// FindByTenant retrieves a tenant's audit records, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*AuditRecord, error)
}
