package handler

import (
	"github.com/gin-gonic/gin"
	analyticsapp "github.com/pricing/backend/internal/application/analytics"
)

// AnalyticsHandler handles business analytics API endpoints
type AnalyticsHandler struct {
	BaseHandler
	analytics *analyticsapp.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics *analyticsapp.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	analytics.GET("/dashboard", h.Dashboard)
	analytics.GET("/sales-trends", h.SalesTrends)
	analytics.GET("/inventory-analysis", h.InventoryAnalysis)
	analytics.GET("/pricing-impact", h.PricingImpact)
}

// Dashboard returns the headline dashboard view
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dashboard)
}

// SalesTrends aggregates sales over the requested window (default 30 days)
func (h *AnalyticsHandler) SalesTrends(c *gin.Context) {
	var query struct {
		Days int `form:"days" binding:"omitempty,min=1,max=365"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Days <= 0 {
		query.Days = 30
	}

	trends, err := h.analytics.SalesTrends(c.Request.Context(), query.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, trends)
}

// InventoryAnalysis buckets the catalog by inventory pressure
func (h *AnalyticsHandler) InventoryAnalysis(c *gin.Context) {
	analysis, err := h.analytics.InventoryAnalysis(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, analysis)
}

// PricingImpact measures sales before and after recent price changes
func (h *AnalyticsHandler) PricingImpact(c *gin.Context) {
	impact, err := h.analytics.PricingImpact(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, impact)
}
