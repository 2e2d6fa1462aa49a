package fifo

import (
	"time"

	"github.com/google/uuid"

	"github.com/stocklot/backend/internal/domain/fifoconfig"
)

// CreateConfigurationRequest represents a new FIFO configuration
type CreateConfigurationRequest struct {
	Scope             string     `json:"scope" binding:"required,oneof=PRODUCT FAMILY GLOBAL"`
	ProductID         *uuid.UUID `json:"product_id"`
	FamilyID          *uuid.UUID `json:"family_id"`
	Priority          int        `json:"priority"`
	ToleranceDays     int        `json:"tolerance_days" binding:"min=0"`
	CriticalDays      *int       `json:"critical_days"`
	AlertDays         *int       `json:"alert_days"`
	WarningDays       *int       `json:"warning_days"`
	IgnoreExpiredLots *bool      `json:"ignore_expired_lots"`
	PricePriority     bool       `json:"price_priority"`
	AutoAction        bool       `json:"auto_action"`
}

// UpdateConfigurationRequest carries the mutable configuration fields
type UpdateConfigurationRequest struct {
	Active            *bool `json:"active"`
	Priority          *int  `json:"priority"`
	ToleranceDays     *int  `json:"tolerance_days"`
	CriticalDays      *int  `json:"critical_days"`
	AlertDays         *int  `json:"alert_days"`
	WarningDays       *int  `json:"warning_days"`
	IgnoreExpiredLots *bool `json:"ignore_expired_lots"`
	PricePriority     *bool `json:"price_priority"`
	AutoAction        *bool `json:"auto_action"`
}

// ConfigurationResponse represents a FIFO configuration in API responses
type ConfigurationResponse struct {
	ID                uuid.UUID  `json:"id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	Scope             string     `json:"scope"`
	ProductID         *uuid.UUID `json:"product_id,omitempty"`
	FamilyID          *uuid.UUID `json:"family_id,omitempty"`
	Active            bool       `json:"active"`
	Priority          int        `json:"priority"`
	ToleranceDays     int        `json:"tolerance_days"`
	CriticalDays      int        `json:"critical_days"`
	AlertDays         int        `json:"alert_days"`
	WarningDays       int        `json:"warning_days"`
	IgnoreExpiredLots bool       `json:"ignore_expired_lots"`
	PricePriority     bool       `json:"price_priority"`
	AutoAction        bool       `json:"auto_action"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

// ToConfigurationResponse converts a configuration to its response representation
func ToConfigurationResponse(c *fifoconfig.Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:                c.ID,
		TenantID:          c.TenantID,
		Scope:             c.Scope().Kind.String(),
		ProductID:         c.ProductID,
		FamilyID:          c.FamilyID,
		Active:            c.Active,
		Priority:          c.Priority,
		ToleranceDays:     c.ToleranceDays,
		CriticalDays:      c.Thresholds.CriticalDays,
		AlertDays:         c.Thresholds.AlertDays,
		WarningDays:       c.Thresholds.WarningDays,
		IgnoreExpiredLots: c.IgnoreExpiredLots,
		PricePriority:     c.PricePriority,
		AutoAction:        c.AutoAction,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Version:           c.GetVersion(),
	}
}

// ToConfigurationResponses converts a slice of configurations
func ToConfigurationResponses(configs []*fifoconfig.Configuration) []ConfigurationResponse {
	out := make([]ConfigurationResponse, len(configs))
	for i, c := range configs {
		out[i] = ToConfigurationResponse(c)
	}
	return out
}

// RecommendationResponse is the FIFO pick for a product
type RecommendationResponse struct {
	ProductID       uuid.UUID  `json:"product_id"`
	ConfigurationID uuid.UUID  `json:"configuration_id"`
	LotID           *uuid.UUID `json:"lot_id,omitempty"`
	LotNumber       string     `json:"lot_number,omitempty"`
	NoCandidate     bool       `json:"no_candidate"`
}

// RankedLotResponse is one lot with its depletion-order position
type RankedLotResponse struct {
	Position  int       `json:"position"`
	LotID     uuid.UUID `json:"lot_id"`
	LotNumber string    `json:"lot_number"`
}

// ComplianceResponse reports whether a depletion followed the recommended order
type ComplianceResponse struct {
	Compliant        bool       `json:"compliant"`
	DepletedLotID    uuid.UUID  `json:"depleted_lot_id"`
	RecommendedLotID *uuid.UUID `json:"recommended_lot_id,omitempty"`
	RecommendedLotNo string     `json:"recommended_lot_number,omitempty"`
}
