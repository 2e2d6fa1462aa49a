package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	fifoapp "github.com/stocklot/backend/internal/application/fifo"
	"github.com/stocklot/backend/internal/interfaces/http/dto"
)

// FIFOHandler handles FIFO configuration and recommendation requests
type FIFOHandler struct {
	BaseHandler
	service *fifoapp.Service
}

// NewFIFOHandler creates a new FIFO handler
func NewFIFOHandler(service *fifoapp.Service) *FIFOHandler {
	return &FIFOHandler{service: service}
}

// CreateConfiguration handles POST /api/v1/fifo/configurations
func (h *FIFOHandler) CreateConfiguration(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var req fifoapp.CreateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.CreateConfiguration(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// UpdateConfiguration handles PUT /api/v1/fifo/configurations/:id
func (h *FIFOHandler) UpdateConfiguration(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}
	configID := uuid.MustParse(uri.ID)

	var req fifoapp.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.UpdateConfiguration(c.Request.Context(), tenantID, configID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteConfiguration handles DELETE /api/v1/fifo/configurations/:id
func (h *FIFOHandler) DeleteConfiguration(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid configuration ID")
		return
	}
	configID := uuid.MustParse(uri.ID)

	if err := h.service.DeleteConfiguration(c.Request.Context(), tenantID, configID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListConfigurations handles GET /api/v1/fifo/configurations
func (h *FIFOHandler) ListConfigurations(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	resp, err := h.service.ListConfigurations(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ResolveConfiguration handles GET /api/v1/products/:id/fifo/configuration
func (h *FIFOHandler) ResolveConfiguration(c *gin.Context) {
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

	resp, err := h.service.ResolveConfiguration(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// NextLot handles GET /api/v1/products/:id/fifo/next-lot
func (h *FIFOHandler) NextLot(c *gin.Context) {
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

	resp, err := h.service.NextLotToSell(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RankLots handles GET /api/v1/products/:id/fifo/ranking
func (h *FIFOHandler) RankLots(c *gin.Context) {
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

	resp, err := h.service.RankLots(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// complianceQuery identifies the depleted lot to check
type complianceQuery struct {
	LotID string `form:"lot_id" binding:"required,uuid"`
}

// CheckCompliance handles GET /api/v1/products/:id/fifo/compliance
func (h *FIFOHandler) CheckCompliance(c *gin.Context) {
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

	var query complianceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	lotID := uuid.MustParse(query.LotID)

	resp, err := h.service.CheckCompliance(c.Request.Context(), tenantID, productID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
