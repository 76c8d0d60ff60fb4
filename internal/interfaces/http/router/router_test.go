package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func textHandler(status int, body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(status, body)
	}
}

func TestNewRouterDefaults(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)

	g := NewDomainGroup("pricing", "/pricing")
	g.GET("/rules", textHandler(http.StatusOK, "rules"))
	r.Register(g).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/pricing/rules").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/pricing/rules").Code)
}

func TestRegisterCollectsGroups(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("pricing", "/pricing"))
	assert.Len(t, r.registrars, 1)
}

func TestSetupMountsUnderVersionedPrefix(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("pricing", "/pricing")
	g.GET("/ping", textHandler(http.StatusOK, "pong"))
	r.Register(g)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/pricing/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroupNameAndPrefix(t *testing.T) {
	g := NewDomainGroup("catalog", "/catalog")
	assert.Equal(t, "catalog", g.Name())
	assert.Equal(t, "/catalog", g.Prefix())
}

func TestDomainGroupMethods(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		register   func(g *DomainGroup)
		wantStatus int
	}{
		{http.MethodGet, "/api/v1/catalog/products", func(g *DomainGroup) {
			g.GET("/products", textHandler(http.StatusOK, "listed"))
		}, http.StatusOK},
		{http.MethodPost, "/api/v1/catalog/products", func(g *DomainGroup) {
			g.POST("/products", textHandler(http.StatusCreated, "created"))
		}, http.StatusCreated},
		{http.MethodPut, "/api/v1/catalog/products/P001", func(g *DomainGroup) {
			g.PUT("/products/:sku", textHandler(http.StatusOK, "replaced"))
		}, http.StatusOK},
		{http.MethodPatch, "/api/v1/catalog/products/P001", func(g *DomainGroup) {
			g.PATCH("/products/:sku", textHandler(http.StatusOK, "patched"))
		}, http.StatusOK},
		{http.MethodDelete, "/api/v1/catalog/products/P001", func(g *DomainGroup) {
			g.DELETE("/products/:sku", textHandler(http.StatusNoContent, ""))
		}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("catalog", "/catalog")
			tt.register(g)
			g.RegisterRoutes(engine.Group("/api/v1"))

			assert.Equal(t, tt.wantStatus, serve(engine, tt.method, tt.path).Code)
		})
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("pricing", "/pricing")
	g.Use(func(c *gin.Context) {
		c.Header("X-Domain", "pricing")
		c.Next()
	})
	g.GET("/rules", textHandler(http.StatusOK, "ok"))
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/pricing/rules")
	assert.Equal(t, "pricing", w.Header().Get("X-Domain"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("catalog", "/catalog")

	products := g.Group("products", "/products")
	products.GET("", textHandler(http.StatusOK, "products list"))

	competitors := g.Group("competitors", "/competitors")
	competitors.GET("", textHandler(http.StatusOK, "competitor prices"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products list", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/catalog/competitors")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "competitor prices", w.Body.String())
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", textHandler(http.StatusOK, "products"))

	analytics := NewDomainGroup("analytics", "/analytics")
	analytics.GET("/dashboard", textHandler(http.StatusOK, "dashboard"))

	r.Register(catalog).Register(analytics)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/analytics/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dashboard", w.Body.String())
}

func TestChainedRouteRegistration(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("pricing", "/pricing")
	g.GET("/rules", textHandler(http.StatusOK, "a")).
		POST("/quotes", textHandler(http.StatusOK, "b")).
		PUT("/rules/:id", textHandler(http.StatusOK, "c"))

	r.Register(g).Setup()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/pricing/rules"},
		{http.MethodPost, "/api/v1/pricing/quotes"},
		{http.MethodPut, "/api/v1/pricing/rules/1"},
	}

	for _, rt := range routes {
		assert.Equal(t, http.StatusOK, serve(engine, rt.method, rt.path).Code, "%s %s", rt.method, rt.path)
	}
}
