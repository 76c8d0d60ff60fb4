package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pricing/backend/internal/domain/analytics"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	products catalog.ProductRepository
	sales    analytics.SaleRepository
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, sales analytics.SaleRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		sales:    sales,
		logger:   logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.products.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Category, req.BasePrice, req.CostPrice)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	if err := product.SetInventory(req.Inventory); err != nil {
		return nil, err
	}
	if err := product.SetSalesLast30Days(req.SalesLast30Days); err != nil {
		return nil, err
	}
	if err := product.SetAverageRating(req.AverageRating); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("sku", product.SKU))

	response := ToProductResponse(product)
	return &response, nil
}

// Get returns one product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU returns one product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns products matching the filter, paginated
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	repoFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
	}

	var (
		products []catalog.Product
		err      error
	)
	if filter.Category != "" {
		products, err = s.products.FindByCategory(ctx, filter.Category, repoFilter)
	} else {
		products, err = s.products.FindAll(ctx, repoFilter)
	}
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	total, err := s.products.Count(ctx)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return shared.NewPaginated(items, total, page, repoFilter.Limit()), nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	category := ""
	if req.Category != nil {
		category = *req.Category
	}
	if err := product.Update(name, description, category); err != nil {
		return nil, err
	}

	if req.Inventory != nil {
		if err := product.SetInventory(*req.Inventory); err != nil {
			return nil, err
		}
	}
	if req.SalesLast30Days != nil {
		if err := product.SetSalesLast30Days(*req.SalesLast30Days); err != nil {
			return nil, err
		}
	}
	if req.AverageRating != nil {
		if err := product.SetAverageRating(*req.AverageRating); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("id", id.String()))
	return nil
}

// Categories lists the distinct product categories
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.products.DistinctCategories(ctx)
}

// Sales returns a product's sales history, newest first
func (s *ProductService) Sales(ctx context.Context, id uuid.UUID, limit int) ([]SaleResponse, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}
	sales, err := s.sales.FindByProduct(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	items := make([]SaleResponse, len(sales))
	for i, sale := range sales {
		items[i] = SaleResponse{
			ID:        sale.ID,
			ProductID: sale.ProductID,
			Date:      sale.Date,
			UnitsSold: sale.UnitsSold,
			Price:     sale.Price,
			Revenue:   sale.Revenue,
		}
	}
	return items, nil
}
