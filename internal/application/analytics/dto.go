package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/analytics"
)

// AnalyticsOptions tunes the advisor computations. Zero values fall back
// to the service defaults.
type AnalyticsOptions struct {
	CarryingRatePercent decimal.Decimal `form:"carrying_rate_percent"`
	LowStockThreshold   decimal.Decimal `form:"low_stock_threshold"`
}

// LotAnalyticsResponse carries the per-lot rotation metrics
type LotAnalyticsResponse struct {
	LotID                 uuid.UUID       `json:"lot_id"`
	LotNumber             string          `json:"lot_number"`
	RemainingQuantity     decimal.Decimal `json:"remaining_quantity"`
	StockValue            decimal.Decimal `json:"stock_value"`
	UsagePercent          decimal.Decimal `json:"usage_percent"`
	DaysInStock           int             `json:"days_in_stock"`
	RotationRate          decimal.Decimal `json:"rotation_rate"`
	RotationBand          string          `json:"rotation_band"`
	AvgDailyConsumption   decimal.Decimal `json:"avg_daily_consumption"`
	PredictedStockoutDate *time.Time      `json:"predicted_stockout_date,omitempty"`
	CarryingCost          decimal.Decimal `json:"carrying_cost"`
	SalePriorityScore     decimal.Decimal `json:"sale_priority_score"`
}

// ProductAnalyticsResponse aggregates a product's lot metrics
type ProductAnalyticsResponse struct {
	ProductID         uuid.UUID              `json:"product_id"`
	TotalLots         int                    `json:"total_lots"`
	TotalRemaining    decimal.Decimal        `json:"total_remaining"`
	TotalStockValue   decimal.Decimal        `json:"total_stock_value"`
	TotalCarryingCost decimal.Decimal        `json:"total_carrying_cost"`
	Lots              []LotAnalyticsResponse `json:"lots"`
}

// SuggestionResponse represents one advisory optimization
type SuggestionResponse struct {
	Type            string          `json:"type"`
	Priority        string          `json:"priority"`
	ProductID       uuid.UUID       `json:"product_id"`
	LotID           *uuid.UUID      `json:"lot_id,omitempty"`
	ExpectedBenefit decimal.Decimal `json:"expected_benefit"`
	Description     string          `json:"description"`
}

// ToSuggestionResponses converts advisor suggestions
func ToSuggestionResponses(suggestions []analytics.Suggestion) []SuggestionResponse {
	out := make([]SuggestionResponse, len(suggestions))
	for i, s := range suggestions {
		out[i] = SuggestionResponse{
			Type:            string(s.Type),
			Priority:        string(s.Priority),
			ProductID:       s.ProductID,
			ExpectedBenefit: s.ExpectedBenefit,
			Description:     s.Description,
		}
		if s.LotID != uuid.Nil {
			id := s.LotID
			out[i].LotID = &id
		}
	}
	return out
}
