package expiration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/expiration"
)

// UpdateAlertStatusRequest moves an active alert to a handled status
type UpdateAlertStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=TREATED IGNORED"`
}

// ListAlertsFilter narrows an alert listing
type ListAlertsFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE TREATED IGNORED"`
}

// AlertResponse represents an expiration alert in API responses
type AlertResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	LotID             uuid.UUID       `json:"lot_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	LotNumber         string          `json:"lot_number"`
	Urgency           string          `json:"urgency"`
	DaysRemaining     int             `json:"days_remaining"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	ExpirationDate    time.Time       `json:"expiration_date"`
	EstimatedLoss     decimal.Decimal `json:"estimated_loss"`
	Status            string          `json:"status"`
	HandledAt         *time.Time      `json:"handled_at,omitempty"`
	HandledBy         *uuid.UUID      `json:"handled_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToAlertResponse converts an alert to its response representation
func ToAlertResponse(a *expiration.Alert) AlertResponse {
	return AlertResponse{
		ID:                a.ID,
		TenantID:          a.TenantID,
		LotID:             a.LotID,
		ProductID:         a.ProductID,
		LotNumber:         a.LotNumber,
		Urgency:           a.Urgency.String(),
		DaysRemaining:     a.DaysRemaining,
		RemainingQuantity: a.RemainingQuantity,
		ExpirationDate:    a.ExpirationDate,
		EstimatedLoss:     a.EstimatedLoss,
		Status:            string(a.Status),
		HandledAt:         a.HandledAt,
		HandledBy:         a.HandledBy,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// ToAlertResponses converts a slice of alerts
func ToAlertResponses(alerts []*expiration.Alert) []AlertResponse {
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = ToAlertResponse(a)
	}
	return out
}

// SweepResponse summarizes one alert generation pass
type SweepResponse struct {
	LotsExamined int `json:"lots_examined"`
	Created      int `json:"created"`
	Refreshed    int `json:"refreshed"`
	Unchanged    int `json:"unchanged"`
}

// RiskResponse is the on-demand risk assessment of one lot
type RiskResponse struct {
	LotID              uuid.UUID       `json:"lot_id"`
	ProductID          uuid.UUID       `json:"product_id"`
	HasExpiry          bool            `json:"has_expiry"`
	DaysRemaining      int             `json:"days_remaining"`
	Urgency            string          `json:"urgency"`
	EstimatedLoss      decimal.Decimal `json:"estimated_loss"`
	RecommendedActions []string        `json:"recommended_actions"`
}

// ToRiskResponse converts a risk assessment to its response representation
func ToRiskResponse(a expiration.RiskAssessment) RiskResponse {
	return RiskResponse{
		LotID:              a.LotID,
		ProductID:          a.ProductID,
		HasExpiry:          a.HasExpiry,
		DaysRemaining:      a.DaysRemaining,
		Urgency:            a.Urgency.String(),
		EstimatedLoss:      a.EstimatedLoss,
		RecommendedActions: a.RecommendedActions,
	}
}
