package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU             string          `json:"sku" binding:"required,min=1,max=20"`
	Name            string          `json:"name" binding:"required,min=1,max=100"`
	Description     string          `json:"description" binding:"max=2000"`
	Category        string          `json:"category" binding:"required,min=1,max=50"`
	BasePrice       decimal.Decimal `json:"base_price" binding:"required"`
	CostPrice       decimal.Decimal `json:"cost_price" binding:"required"`
	Inventory       int             `json:"inventory" binding:"min=0"`
	SalesLast30Days int             `json:"sales_last_30_days" binding:"min=0"`
	AverageRating   float64         `json:"average_rating" binding:"min=0,max=5"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	Category        *string  `json:"category" binding:"omitempty,min=1,max=50"`
	Inventory       *int     `json:"inventory" binding:"omitempty,min=0"`
	SalesLast30Days *int     `json:"sales_last_30_days" binding:"omitempty,min=0"`
	AverageRating   *float64 `json:"average_rating" binding:"omitempty,min=0,max=5"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"per_page" binding:"omitempty,min=1,max=200"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	BasePrice       decimal.Decimal `json:"base_price"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	MinPrice        decimal.Decimal `json:"min_price"`
	MaxPrice        decimal.Decimal `json:"max_price"`
	Inventory       int             `json:"inventory"`
	SalesLast30Days int             `json:"sales_last_30_days"`
	AverageRating   float64         `json:"average_rating"`
	ProfitMargin    decimal.Decimal `json:"profit_margin"`
	LowInventory    bool            `json:"low_inventory"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SaleResponse represents one sales row in API responses
type SaleResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Date      time.Time       `json:"date"`
	UnitsSold int             `json:"units_sold"`
	Price     decimal.Decimal `json:"price"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ToProductResponse converts a product to its API representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		BasePrice:       p.BasePrice,
		CurrentPrice:    p.CurrentPrice,
		CostPrice:       p.CostPrice,
		MinPrice:        p.MinPrice().Round(2),
		MaxPrice:        p.MaxPrice().Round(2),
		Inventory:       p.Inventory,
		SalesLast30Days: p.SalesLast30Days,
		AverageRating:   p.AverageRating,
		ProfitMargin:    p.ProfitMargin().Round(2),
		LowInventory:    p.IsLowInventory(0),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
