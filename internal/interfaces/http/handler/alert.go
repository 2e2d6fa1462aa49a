package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	expirationapp "github.com/stocklot/backend/internal/application/expiration"
	"github.com/stocklot/backend/internal/interfaces/http/dto"
)

// AlertHandler handles expiration alert requests
type AlertHandler struct {
	BaseHandler
	service *expirationapp.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *expirationapp.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// GenerateAlerts handles POST /api/v1/alerts/sweep
func (h *AlertHandler) GenerateAlerts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	resp, err := h.service.GenerateAlerts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListAlerts handles GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var filter expirationapp.ListAlertsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ListAlerts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateAlertStatus handles PUT /api/v1/alerts/:id/status
func (h *AlertHandler) UpdateAlertStatus(c *gin.Context) {
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

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}
	alertID := uuid.MustParse(uri.ID)

	var req expirationapp.UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.UpdateAlertStatus(c.Request.Context(), tenantID, alertID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AssessLot handles GET /api/v1/lots/:id/risk
func (h *AlertHandler) AssessLot(c *gin.Context) {
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

	resp, err := h.service.AssessLot(c.Request.Context(), tenantID, lotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
