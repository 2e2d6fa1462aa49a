package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	analyticsapp "github.com/stocklot/backend/internal/application/analytics"
	"github.com/stocklot/backend/internal/interfaces/http/dto"
)

// AnalyticsHandler handles rotation analytics and advisory requests
type AnalyticsHandler struct {
	BaseHandler
	service *analyticsapp.AdvisorService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analyticsapp.AdvisorService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// ProductAnalytics handles GET /api/v1/products/:id/analytics
func (h *AnalyticsHandler) ProductAnalytics(c *gin.Context) {
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

	var opts analyticsapp.AnalyticsOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ProductAnalytics(c.Request.Context(), tenantID, productID, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SuggestOptimizations handles GET /api/v1/products/:id/analytics/suggestions
func (h *AnalyticsHandler) SuggestOptimizations(c *gin.Context) {
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

	var opts analyticsapp.AnalyticsOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.SuggestOptimizations(c.Request.Context(), tenantID, productID, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
