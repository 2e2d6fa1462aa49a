package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reconapp "github.com/stocklot/backend/internal/application/reconciliation"
	"github.com/stocklot/backend/internal/interfaces/http/dto"
)

// ReconciliationHandler handles inventory reconciliation requests
type ReconciliationHandler struct {
	BaseHandler
	service *reconapp.Service
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(service *reconapp.Service) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// StartSession handles POST /api/v1/reconciliations
func (h *ReconciliationHandler) StartSession(c *gin.Context) {
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

	var req reconapp.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.StartSession(c.Request.Context(), tenantID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetSession handles GET /api/v1/reconciliations/:id
func (h *ReconciliationHandler) GetSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}
	sessionID := uuid.MustParse(uri.ID)

	resp, err := h.service.GetSession(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListSessions handles GET /api/v1/reconciliations
func (h *ReconciliationHandler) ListSessions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			h.BadRequest(c, "limit must be an integer between 1 and 200")
			return
		}
		limit = parsed
	}

	resp, err := h.service.ListSessions(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecordCount handles POST /api/v1/reconciliations/:id/counts
func (h *ReconciliationHandler) RecordCount(c *gin.Context) {
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
		h.BadRequest(c, "Invalid session ID")
		return
	}
	sessionID := uuid.MustParse(uri.ID)

	var req reconapp.RecordCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.RecordCount(c.Request.Context(), tenantID, sessionID, agentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetDiscrepancies handles GET /api/v1/reconciliations/:id/discrepancies
func (h *ReconciliationHandler) GetDiscrepancies(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}
	sessionID := uuid.MustParse(uri.ID)

	resp, err := h.service.GetDiscrepancies(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CompleteSession handles POST /api/v1/reconciliations/:id/complete
func (h *ReconciliationHandler) CompleteSession(c *gin.Context) {
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
		h.BadRequest(c, "Invalid session ID")
		return
	}
	sessionID := uuid.MustParse(uri.ID)

	resp, err := h.service.CompleteSession(c.Request.Context(), tenantID, sessionID, agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CancelSession handles POST /api/v1/reconciliations/:id/cancel
func (h *ReconciliationHandler) CancelSession(c *gin.Context) {
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
		h.BadRequest(c, "Invalid session ID")
		return
	}
	sessionID := uuid.MustParse(uri.ID)

	resp, err := h.service.CancelSession(c.Request.Context(), tenantID, sessionID, agentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListAuditTrail handles GET /api/v1/reconciliations/:id/audit
func (h *ReconciliationHandler) ListAuditTrail(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant ID required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}
	sessionID := uuid.MustParse(uri.ID)

	records, err := h.service.ListAuditTrail(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}
