package lot

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stocklot/backend/internal/domain/lot"
)

// ReceiveLotRequest represents a lot reception
type ReceiveLotRequest struct {
	ProductID         uuid.UUID        `json:"product_id" binding:"required"`
	LotNumber         string           `json:"lot_number" binding:"required,max=100"`
	InitialQuantity   decimal.Decimal  `json:"initial_quantity" binding:"required"`
	ReceptionDate     time.Time        `json:"reception_date" binding:"required"`
	ManufactureDate   *time.Time       `json:"manufacture_date"`
	ExpirationDate    *time.Time       `json:"expiration_date"`
	UnitPurchasePrice *decimal.Decimal `json:"unit_purchase_price"`
	UnitSalePrice     *decimal.Decimal `json:"unit_sale_price"`
	StorageLocation   string           `json:"storage_location" binding:"max=100"`
	ReferenceID       string           `json:"reference_id" binding:"max=50"`
}

// ApplyMovementRequest represents a single ledger movement
type ApplyMovementRequest struct {
	LotID          uuid.UUID         `json:"lot_id" binding:"required"`
	Type           string            `json:"type" binding:"required,oneof=ENTRY EXIT ADJUSTMENT RETURN DESTRUCTION"`
	SignedQuantity decimal.Decimal   `json:"signed_quantity" binding:"required"`
	ReferenceType  string            `json:"reference_type" binding:"max=30"`
	ReferenceID    string            `json:"reference_id" binding:"max=50"`
	OccurredAt     *time.Time        `json:"occurred_at"`
	Metadata       map[string]string `json:"metadata"`
}

// TransferRequest represents a paired transfer between two lots
type TransferRequest struct {
	FromLotID   uuid.UUID       `json:"from_lot_id" binding:"required"`
	ToLotID     uuid.UUID       `json:"to_lot_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	ReferenceID string          `json:"reference_id" binding:"max=50"`
}

// ListMovementsFilter bounds a movement history query
type ListMovementsFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// ListLotsFilter controls which lifecycle states a lot listing includes
type ListLotsFilter struct {
	IncludeExpired  bool `form:"include_expired"`
	IncludeDepleted bool `form:"include_depleted"`
}

// LotResponse represents a lot in API responses
type LotResponse struct {
	ID                uuid.UUID        `json:"id"`
	TenantID          uuid.UUID        `json:"tenant_id"`
	ProductID         uuid.UUID        `json:"product_id"`
	LotNumber         string           `json:"lot_number"`
	InitialQuantity   decimal.Decimal  `json:"initial_quantity"`
	RemainingQuantity decimal.Decimal  `json:"remaining_quantity"`
	ConsumedQuantity  decimal.Decimal  `json:"consumed_quantity"`
	UsagePercent      decimal.Decimal  `json:"usage_percent"`
	StockValue        decimal.Decimal  `json:"stock_value"`
	ManufactureDate   *time.Time       `json:"manufacture_date,omitempty"`
	ReceptionDate     time.Time        `json:"reception_date"`
	ExpirationDate    *time.Time       `json:"expiration_date,omitempty"`
	UnitPurchasePrice *decimal.Decimal `json:"unit_purchase_price,omitempty"`
	UnitSalePrice     *decimal.Decimal `json:"unit_sale_price,omitempty"`
	StorageLocation   string           `json:"storage_location,omitempty"`
	Status            string           `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int              `json:"version"`
}

// ToLotResponse converts a lot to its response representation
func ToLotResponse(l *lot.Lot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		TenantID:          l.TenantID,
		ProductID:         l.ProductID,
		LotNumber:         l.LotNumber,
		InitialQuantity:   l.InitialQuantity,
		RemainingQuantity: l.RemainingQuantity,
		ConsumedQuantity:  l.ConsumedQuantity(),
		UsagePercent:      l.UsagePercent(),
		StockValue:        l.StockValue(),
		ManufactureDate:   l.ManufactureDate,
		ReceptionDate:     l.ReceptionDate,
		ExpirationDate:    l.ExpirationDate,
		UnitPurchasePrice: l.UnitPurchasePrice,
		UnitSalePrice:     l.UnitSalePrice,
		StorageLocation:   l.StorageLocation,
		Status:            l.Status.String(),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
		Version:           l.GetVersion(),
	}
}

// ToLotResponses converts a slice of lots
func ToLotResponses(lots []lot.Lot) []LotResponse {
	out := make([]LotResponse, len(lots))
	for i := range lots {
		out[i] = ToLotResponse(&lots[i])
	}
	return out
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID             uuid.UUID         `json:"id"`
	LotID          uuid.UUID         `json:"lot_id"`
	ProductID      uuid.UUID         `json:"product_id"`
	Type           string            `json:"type"`
	SignedQuantity decimal.Decimal   `json:"signed_quantity"`
	OccurredAt     time.Time         `json:"occurred_at"`
	ActingAgentID  uuid.UUID         `json:"acting_agent_id"`
	ReferenceType  string            `json:"reference_type,omitempty"`
	ReferenceID    string            `json:"reference_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// ToMovementResponse converts a movement to its response representation
func ToMovementResponse(m *lot.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		LotID:          m.LotID,
		ProductID:      m.ProductID,
		Type:           m.Type.String(),
		SignedQuantity: m.SignedQuantity,
		OccurredAt:     m.OccurredAt,
		ActingAgentID:  m.ActingAgentID,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Metadata:       m.Metadata,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(ms []lot.Movement) []MovementResponse {
	out := make([]MovementResponse, len(ms))
	for i := range ms {
		out[i] = ToMovementResponse(&ms[i])
	}
	return out
}

// TransferResponse carries both legs of a completed transfer
type TransferResponse struct {
	ReferenceID string           `json:"reference_id"`
	ExitLeg     MovementResponse `json:"exit_leg"`
	EntryLeg    MovementResponse `json:"entry_leg"`
}
