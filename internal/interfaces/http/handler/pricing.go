package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	pricingapp "github.com/pricing/backend/internal/application/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PricingHandler handles pricing engine API endpoints
type PricingHandler struct {
	BaseHandler
	pricing *pricingapp.Service
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(pricing *pricingapp.Service) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

// RegisterRoutes registers the pricing routes
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pricing := rg.Group("/pricing")
	pricing.POST("/optimize", h.Optimize)
	pricing.POST("/products/:id/optimize", h.OptimizeProduct)
	pricing.PUT("/products/:id/price", h.UpdatePrice)
	pricing.GET("/products/:id/history", h.History)
	pricing.GET("/products/:id/elasticity", h.Elasticity)
	pricing.GET("/products/:id/recommendations", h.Recommendations)
	pricing.GET("/products/:id/competitor", h.CompetitorComparison)
	pricing.GET("/competitor-prices", h.CompetitorPrices)
	pricing.GET("/market-analysis", h.MarketAnalysis)
	pricing.GET("/analytics", h.Analytics)
	pricing.POST("/model/train", h.TrainModel)
	pricing.GET("/model/info", h.ModelInfo)
	pricing.GET("/cache/stats", h.CacheStats)
	pricing.DELETE("/cache", h.InvalidateCache)
}

// OptimizeRequest selects which products a batch run covers. An empty
// list means the whole catalog.
type OptimizeRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// UpdatePriceRequest carries a manual price override
type UpdatePriceRequest struct {
	Price  decimal.Decimal `json:"price" binding:"required"`
	Reason string          `json:"reason" binding:"omitempty,max=200"`
}

// Optimize runs the pricing engine over the selected products, or the
// whole catalog when no IDs are given
func (h *PricingHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	var productIDs []uuid.UUID
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid product ID: "+raw)
			return
		}
		productIDs = append(productIDs, id)
	}

	var result *pricingapp.BatchResult
	var err error
	if len(productIDs) > 0 {
		result, err = h.pricing.OptimizeBatch(c.Request.Context(), productIDs)
	} else {
		result, err = h.pricing.OptimizeAll(c.Request.Context())
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Total == 0 {
		h.NotFound(c, "No products found")
		return
	}

	h.Success(c, result)
}

// OptimizeProduct runs one pricing decision for a single product
func (h *PricingHandler) OptimizeProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	decision, err := h.pricing.OptimizeProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, decision)
}

// UpdatePrice applies a manual price override within the product's bounds
func (h *PricingHandler) UpdatePrice(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	decision, err := h.pricing.UpdatePriceManually(c.Request.Context(), productID, req.Price, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, decision)
}

// History returns the paginated price change ledger for a product
func (h *PricingHandler) History(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var query struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"per_page" binding:"omitempty,min=1,max=200"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	page, err := h.pricing.History(c.Request.Context(), productID, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ElasticityResponse wraps the estimate so "not enough history" has an
// explicit shape instead of a bare null
type ElasticityResponse struct {
	Available bool                         `json:"available"`
	Message   string                       `json:"message,omitempty"`
	Report    *pricingapp.ElasticityReport `json:"report,omitempty"`
}

// Elasticity estimates price elasticity from the product's recent history
func (h *PricingHandler) Elasticity(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	report, err := h.pricing.Elasticity(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ElasticityResponse{Available: report != nil, Report: report}
	if report == nil {
		resp.Message = "Insufficient price history for elasticity estimation"
	}
	h.Success(c, resp)
}

// Recommendations returns advisory pricing suggestions for a product
func (h *PricingHandler) Recommendations(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	recommendations, err := h.pricing.Recommendations(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, recommendations)
}

// CompetitorComparison compares one product's price against its competitor
func (h *PricingHandler) CompetitorComparison(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	gap, err := h.pricing.CompetitorComparison(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gap)
}

// CompetitorPrices bulk-resolves competitor prices for a comma-separated
// list of SKUs
func (h *PricingHandler) CompetitorPrices(c *gin.Context) {
	raw := c.Query("skus")
	if raw == "" {
		h.BadRequest(c, "Query parameter 'skus' is required")
		return
	}

	var skus []string
	for _, sku := range strings.Split(raw, ",") {
		if sku = strings.TrimSpace(sku); sku != "" {
			skus = append(skus, sku)
		}
	}
	if len(skus) == 0 {
		h.BadRequest(c, "Query parameter 'skus' is required")
		return
	}

	prices, err := h.pricing.CompetitorPrices(c.Request.Context(), skus)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, prices)
}

// MarketAnalysis compares the whole catalog against competitor prices
func (h *PricingHandler) MarketAnalysis(c *gin.Context) {
	analysis, err := h.pricing.MarketAnalysis(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, analysis)
}

// Analytics returns the pricing analytics report
func (h *PricingHandler) Analytics(c *gin.Context) {
	report, err := h.pricing.Analytics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// TrainModel fits the price model on the current catalog
func (h *PricingHandler) TrainModel(c *gin.Context) {
	report, err := h.pricing.Train(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ModelInfo reports the state of the trained model
func (h *PricingHandler) ModelInfo(c *gin.Context) {
	h.Success(c, h.pricing.ModelInfo())
}

// CacheStats reports competitor quote cache occupancy
func (h *PricingHandler) CacheStats(c *gin.Context) {
	stats, err := h.pricing.CacheStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// InvalidateCache drops all cached competitor quotes
func (h *PricingHandler) InvalidateCache(c *gin.Context) {
	if err := h.pricing.InvalidateCache(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
