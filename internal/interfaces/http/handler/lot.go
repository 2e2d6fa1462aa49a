package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lotapp "github.com/stocklot/backend/internal/application/lot"
	"github.com/stocklot/backend/internal/interfaces/http/dto"
)

// LotHandler handles lot and movement ledger requests
type LotHandler struct {
	BaseHandler
	service *lotapp.LedgerService
}

// NewLotHandler creates a new lot handler
func NewLotHandler(service *lotapp.LedgerService) *LotHandler {
	return &LotHandler{service: service}
}

// ReceiveLot handles POST /api/v1/lots
func (h *LotHandler) ReceiveLot(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}
	agentID, err := getAgentID(c)
	if err != nil {
		h.Unauthorized(c, "Agent ID required")
		return
	}

	var req lotapp.ReceiveLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ReceiveLot(c.Request.Context(), tenantID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetLot handles GET /api/v1/lots/:id
func (h *LotHandler) GetLot(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}
	lotID := uuid.MustParse(uri.ID)

	resp, err := h.service.GetLot(c.Request.Context(), tenantID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListLotsForProduct handles GET /api/v1/products/:id/lots
func (h *LotHandler) ListLotsForProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	productID := uuid.MustParse(uri.ID)

	var filter lotapp.ListLotsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListLotsForProduct(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ApplyMovement handles POST /api/v1/movements
func (h *LotHandler) ApplyMovement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}
	agentID, err := getAgentID(c)
	if err != nil {
		h.Unauthorized(c, "Agent ID required")
		return
	}

	var req lotapp.ApplyMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ApplyMovement(c.Request.Context(), tenantID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Transfer handles POST /api/v1/movements/transfer
func (h *LotHandler) Transfer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}
	agentID, err := getAgentID(c)
	if err != nil {
		h.Unauthorized(c, "Agent ID required")
		return
	}

	var req lotapp.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.TransferMovement(c.Request.Context(), tenantID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListMovements handles GET /api/v1/lots/:id/movements
func (h *LotHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}
	lotID := uuid.MustParse(uri.ID)

	var filter lotapp.ListMovementsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListMovements(c.Request.Context(), tenantID, lotID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// VerifyLedger handles GET /api/v1/lots/:id/ledger/verify
func (h *LotHandler) VerifyLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid lot ID")
		return
	}
	lotID := uuid.MustParse(uri.ID)

	consistent, err := h.service.VerifyLedgerInvariant(c.Request.Context(), tenantID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"lot_id":     lotID,
		"consistent": consistent,
	})
}
