package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/reconciliation"
)

// StartSessionRequest opens a reconciliation session over a set of lots
type StartSessionRequest struct {
	Label  string      `json:"label" binding:"omitempty,max=200"`
	LotIDs []uuid.UUID `json:"lot_ids" binding:"required,min=1"`
}

// RecordCountRequest records one physical count inside an open session
type RecordCountRequest struct {
	LotID    uuid.UUID       `json:"lot_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// LineResponse represents one session line in API responses
type LineResponse struct {
	LotID               uuid.UUID        `json:"lot_id"`
	ProductID           uuid.UUID        `json:"product_id"`
	LotNumber           string           `json:"lot_number"`
	TheoreticalQuantity decimal.Decimal  `json:"theoretical_quantity"`
	PhysicalQuantity    *decimal.Decimal `json:"physical_quantity,omitempty"`
	CountedAt           *time.Time       `json:"counted_at,omitempty"`
	CountedBy           *uuid.UUID       `json:"counted_by,omitempty"`
}

// SessionResponse represents a reconciliation session in API responses
type SessionResponse struct {
	ID           uuid.UUID      `json:"id"`
	TenantID     uuid.UUID      `json:"tenant_id"`
	Label        string         `json:"label,omitempty"`
	Status       string         `json:"status"`
	StartedBy    uuid.UUID      `json:"started_by"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CompletedBy  *uuid.UUID     `json:"completed_by,omitempty"`
	TotalLots    int            `json:"total_lots"`
	CountedLines int            `json:"counted_lines"`
	Lines        []LineResponse `json:"lines"`
	Version      int            `json:"version"`
}

// ToSessionResponse converts a session to its response representation
func ToSessionResponse(s *reconciliation.Session) SessionResponse {
	lines := make([]LineResponse, len(s.Lines))
	for i, line := range s.Lines {
		lines[i] = LineResponse{
			LotID:               line.LotID,
			ProductID:           line.ProductID,
			LotNumber:           line.LotNumber,
			TheoreticalQuantity: line.TheoreticalQuantity,
			PhysicalQuantity:    line.PhysicalQuantity,
			CountedAt:           line.CountedAt,
			CountedBy:           line.CountedBy,
		}
	}
	return SessionResponse{
		ID:           s.ID,
		TenantID:     s.TenantID,
		Label:        s.Label,
		Status:       string(s.Status),
		StartedBy:    s.StartedBy,
		StartedAt:    s.StartedAt,
		CompletedAt:  s.CompletedAt,
		CompletedBy:  s.CompletedBy,
		TotalLots:    len(s.Lines),
		CountedLines: s.CountedLines(),
		Lines:        lines,
		Version:      s.GetVersion(),
	}
}

// ToSessionResponses converts a slice of sessions
func ToSessionResponses(sessions []*reconciliation.Session) []SessionResponse {
	out := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = ToSessionResponse(s)
	}
	return out
}

// DiscrepancyResponse represents one computed count difference
type DiscrepancyResponse struct {
	LotID       uuid.UUID       `json:"lot_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	LotNumber   string          `json:"lot_number"`
	Theoretical decimal.Decimal `json:"theoretical_quantity"`
	Physical    decimal.Decimal `json:"physical_quantity"`
	Delta       decimal.Decimal `json:"delta"`
	Status      string          `json:"status"`
}

// ToDiscrepancyResponses converts computed discrepancies
func ToDiscrepancyResponses(discrepancies []reconciliation.Discrepancy) []DiscrepancyResponse {
	out := make([]DiscrepancyResponse, len(discrepancies))
	for i, d := range discrepancies {
		out[i] = DiscrepancyResponse{
			LotID:       d.LotID,
			ProductID:   d.ProductID,
			LotNumber:   d.LotNumber,
			Theoretical: d.Theoretical,
			Physical:    d.Physical,
			Delta:       d.Delta,
			Status:      string(d.Status),
		}
	}
	return out
}

// CompletionResponse summarizes a completed session and the adjustments it booked
type CompletionResponse struct {
	Session           SessionResponse       `json:"session"`
	Discrepancies     []DiscrepancyResponse `json:"discrepancies"`
	AdjustmentsBooked int                   `json:"adjustments_booked"`
}

// AuditRecordResponse represents one audit trail entry in API responses
type AuditRecordResponse struct {
	ID                 uuid.UUID         `json:"id"`
	Action             string            `json:"action"`
	SessionID          uuid.UUID         `json:"session_id"`
	AgentID            uuid.UUID         `json:"agent_id"`
	AgentName          string            `json:"agent_name,omitempty"`
	DiscrepanciesCount int               `json:"discrepancies_count"`
	TotalLots          int               `json:"total_lots"`
	RecordedAt         time.Time         `json:"recorded_at"`
	Details            map[string]string `json:"details,omitempty"`
}

// ToAuditRecordResponses converts audit records
func ToAuditRecordResponses(records []*reconciliation.AuditRecord) []AuditRecordResponse {
	out := make([]AuditRecordResponse, len(records))
	for i, r := range records {
		out[i] = AuditRecordResponse{
			ID:                 r.ID,
			Action:             r.Action,
			SessionID:          r.SessionID,
			AgentID:            r.AgentID,
			DiscrepanciesCount: r.DiscrepanciesCount,
			TotalLots:          r.TotalLots,
			RecordedAt:         r.RecordedAt,
			Details:            r.Details,
		}
	}
	return out
}
