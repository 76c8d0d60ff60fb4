package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	pricingapp "github.com/pricing/backend/internal/application/pricing"
	"github.com/pricing/backend/internal/domain/catalog"
	"github.com/pricing/backend/internal/domain/pricing"
	"github.com/pricing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

type pricingMocks struct {
	products *MockProductRepository
	ledger   *MockPriceChangeRepository
	unit     *MockPriceUpdateUnit
	cache    *MockQuoteCache
	client   *MockQuoteClient
	store    *MockArtifactStore
}

func setupPricingRouter(t *testing.T) (*gin.Engine, *pricingMocks) {
	t.Helper()
	m := &pricingMocks{
		products: new(MockProductRepository),
		ledger:   new(MockPriceChangeRepository),
		unit:     new(MockPriceUpdateUnit),
		cache:    new(MockQuoteCache),
		client:   new(MockQuoteClient),
		store:    new(MockArtifactStore),
	}

	extractor := pricingapp.NewFeatureExtractor(pricingapp.SystemClock{})
	oracle := pricingapp.NewPriceOracle(extractor, m.store, zap.NewNop())
	competitor := pricingapp.NewCompetitorPriceProvider(m.cache, m.client, pricingapp.SystemClock{}, zap.NewNop())
	service := pricingapp.NewService(m.products, m.ledger, m.unit, oracle, competitor, zap.NewNop())

	handler := NewPricingHandler(service)
	router := setupTestRouter()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router, m
}

// expectQuoteResolution wires the mocks for one competitor price lookup
// that misses the cache and the live feed, landing on the simulated price.
func expectQuoteResolution(m *pricingMocks) {
	m.cache.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	m.client.On("FetchQuote", mock.Anything, mock.Anything).Return(0.0, errors.New("feed down"))
	m.cache.On("Put", mock.Anything, mock.Anything).Return(nil)
}

func TestPricingHandler_OptimizeProduct_Success(t *testing.T) {
	router, m := setupPricingRouter(t)

	product := mustProduct(t, "P001", "Electronics", 100, 50, 25, 40)
	m.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	expectQuoteResolution(m)
	m.unit.On("ApplyPriceChange", mock.Anything, product, mock.AnythingOfType("*pricing.PriceChange")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/products/"+product.ID.String()+"/optimize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			SKU              string   `json:"sku"`
			NewPrice         string   `json:"new_price"`
			PredictionSource string   `json:"prediction_source"`
			Reasons          []string `json:"adjustment_reasons"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "P001", resp.Data.SKU)
	assert.NotEmpty(t, resp.Data.NewPrice)
	m.unit.AssertExpectations(t)
}

func TestPricingHandler_OptimizeProduct_NotFound(t *testing.T) {
	router, m := setupPricingRouter(t)

	productID := uuid.New()
	m.products.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/products/"+productID.String()+"/optimize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPricingHandler_OptimizeProduct_InvalidID(t *testing.T) {
	router, _ := setupPricingRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/products/abc/optimize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricingHandler_Optimize_WholeCatalog(t *testing.T) {
	router, m := setupPricingRouter(t)

	list := []catalog.Product{
		*mustProduct(t, "P001", "Electronics", 100, 50, 25, 40),
		*mustProduct(t, "P002", "Books", 25, 10, 80, 15),
	}
	m.products.On("FindAll", mock.Anything, mock.Anything).Return(list, nil)
	expectQuoteResolution(m)
	m.unit.On("ApplyPriceChange", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/optimize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total     int `json:"total"`
			Succeeded int `json:"succeeded"`
			Failed    int `json:"failed"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Succeeded)
	assert.Equal(t, 0, resp.Data.Failed)
}

func TestPricingHandler_Optimize_SelectedProducts(t *testing.T) {
	router, m := setupPricingRouter(t)

	product := mustProduct(t, "P003", "Home", 60, 30, 8, 20)
	m.products.On("FindByIDs", mock.Anything, []uuid.UUID{product.ID}).
		Return([]catalog.Product{*product}, nil)
	expectQuoteResolution(m)
	m.unit.On("ApplyPriceChange", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(OptimizeRequest{ProductIDs: []string{product.ID.String()}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/optimize", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	m.products.AssertExpectations(t)
}

func TestPricingHandler_Optimize_EmptyCatalog(t *testing.T) {
	router, m := setupPricingRouter(t)

	m.products.On("FindAll", mock.Anything, mock.Anything).Return([]catalog.Product{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/optimize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPricingHandler_Optimize_BadProductID(t *testing.T) {
	router, _ := setupPricingRouter(t)

	body, _ := json.Marshal(OptimizeRequest{ProductIDs: []string{"nope"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/optimize", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricingHandler_UpdatePrice_Success(t *testing.T) {
	router, m := setupPricingRouter(t)

	// cost 50 -> min 55.00, base 100 -> max 150.00
	product := mustProduct(t, "P001", "Electronics", 100, 50, 25, 40)
	m.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.unit.On("ApplyPriceChange", mock.Anything, product, mock.AnythingOfType("*pricing.PriceChange")).Return(nil)

	body, _ := json.Marshal(map[string]any{"price": 120.00, "reason": "Promo ended"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pricing/products/"+product.ID.String()+"/price", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			NewPrice       string `json:"new_price"`
			AdjustmentType string `json:"adjustment_type"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "120", resp.Data.NewPrice)
	assert.Equal(t, string(pricing.AdjustmentManual), resp.Data.AdjustmentType)
	m.unit.AssertExpectations(t)
}

func TestPricingHandler_UpdatePrice_OutOfBounds(t *testing.T) {
	router, m := setupPricingRouter(t)

	product := mustProduct(t, "P001", "Electronics", 100, 50, 25, 40)
	m.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	body, _ := json.Marshal(map[string]any{"price": 10.00})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/pricing/products/"+product.ID.String()+"/price", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_PRICE_OUT_OF_BOUNDS", resp.Error.Code)
	m.unit.AssertNotCalled(t, "ApplyPriceChange", mock.Anything, mock.Anything, mock.Anything)
}

func TestPricingHandler_UpdatePrice_MissingPrice(t *testing.T) {
	router, _ := setupPricingRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/pricing/products/"+uuid.NewString()+"/price", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricingHandler_History(t *testing.T) {
	router, m := setupPricingRouter(t)

	product := mustProduct(t, "P001", "Electronics", 100, 50, 25, 40)
	changes := []pricing.PriceChange{
		*pricing.NewPriceChange(product.ID, decimal.NewFromInt(100), decimal.NewFromInt(105),
			"AI price optimization", pricing.AdjustmentAIPrediction),
	}
	m.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.ledger.On("FindByProduct", mock.Anything, product.ID, shared.Filter{Page: 2, PageSize: 5}).
		Return(changes, int64(11), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/products/"+product.ID.String()+"/history?page=2&per_page=5", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			Page       int   `json:"page"`
			TotalPages int   `json:"total_pages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestPricingHandler_Elasticity_InsufficientHistory(t *testing.T) {
	router, m := setupPricingRouter(t)

	product := mustProduct(t, "P001", "Electronics", 100, 50, 25, 40)
	m.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	m.ledger.On("FindRecentByProduct", mock.Anything, product.ID, mock.Anything).
		Return([]pricing.PriceChange{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/products/"+product.ID.String()+"/elasticity", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Available bool   `json:"available"`
			Message   string `json:"message"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Available)
	assert.NotEmpty(t, resp.Data.Message)
}

func TestPricingHandler_Recommendations(t *testing.T) {
	router, m := setupPricingRouter(t)

	// low inventory and thin margin both trigger recommendations
	product := mustProduct(t, "P001", "Electronics", 100, 90, 3, 40)
	m.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/products/"+product.ID.String()+"/recommendations", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Type string `json:"type"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data)
}

func TestPricingHandler_CompetitorPrices(t *testing.T) {
	router, m := setupPricingRouter(t)

	m.client.On("FetchQuotes", mock.Anything, []string{"P001", "P002"}).
		Return(map[string]float64{"P001": 95.50, "P002": 23.10}, nil)
	m.cache.On("Put", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/competitor-prices?skus=P001,P002", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]float64 `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 95.50, resp.Data["P001"])
	assert.Equal(t, 23.10, resp.Data["P002"])
}

func TestPricingHandler_CompetitorPrices_MissingSKUs(t *testing.T) {
	router, _ := setupPricingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/competitor-prices", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricingHandler_TrainModel_InsufficientData(t *testing.T) {
	router, m := setupPricingRouter(t)

	list := []catalog.Product{*mustProduct(t, "P001", "Electronics", 100, 50, 25, 40)}
	m.products.On("FindAll", mock.Anything, mock.Anything).Return(list, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/model/train", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_INSUFFICIENT_TRAINING_DATA", resp.Error.Code)
}

func TestPricingHandler_ModelInfo_Untrained(t *testing.T) {
	router, _ := setupPricingRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/model/info", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Trained bool `json:"trained"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Trained)
}

func TestPricingHandler_CacheStats(t *testing.T) {
	router, m := setupPricingRouter(t)

	m.cache.On("Stats", mock.Anything).Return(pricing.CacheStats{
		TotalEntries:   3,
		ValidEntries:   2,
		ExpiredEntries: 1,
		TTLHours:       1,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/cache/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalEntries int `json:"total_entries"`
			ValidEntries int `json:"valid_entries"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.TotalEntries)
	assert.Equal(t, 2, resp.Data.ValidEntries)
}

func TestPricingHandler_InvalidateCache(t *testing.T) {
	router, m := setupPricingRouter(t)

	m.cache.On("Invalidate", mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/pricing/cache", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	m.cache.AssertExpectations(t)
}

func TestPricingHandler_Analytics(t *testing.T) {
	router, m := setupPricingRouter(t)

	list := []catalog.Product{
		*mustProduct(t, "P001", "Electronics", 100, 50, 25, 40),
		*mustProduct(t, "P002", "Books", 25, 10, 5, 15),
	}
	m.products.On("FindAll", mock.Anything, mock.Anything).Return(list, nil)
	m.ledger.On("FindRecent", mock.Anything, 10).Return([]pricing.PriceChange{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/analytics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Summary struct {
				TotalProducts        int `json:"total_products"`
				LowInventoryProducts int `json:"low_inventory_products"`
			} `json:"summary"`
			CategoryStats map[string]struct {
				Count int `json:"count"`
			} `json:"category_stats"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Summary.TotalProducts)
	assert.Equal(t, 1, resp.Data.Summary.LowInventoryProducts)
	assert.Len(t, resp.Data.CategoryStats, 2)
}
