package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A pool of in-memory sqlite connections would each see its own
	// database; keep everything on one connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func seedTestProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: "A useful accessory",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Featured:    true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return &p
}

func TestUpdateProductPersistsZeroValues(t *testing.T) {
	db := setupTestDB(t)
	product := seedTestProduct(t, db, "Phone Case", "10.00", 5)

	controller := NewProductController(db, "test-bucket")
	router := newTestRouter()
	router.PUT("/products/:id", controller.UpdateProduct)

	resp := performRequest(router, http.MethodPut, "/products/1",
		`{"stock": 0, "featured": false, "description": ""}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Product
	if err := db.First(&updated, product.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if updated.Stock != 0 {
		t.Errorf("stock should be set to 0, got %d", updated.Stock)
	}
	if updated.Featured {
		t.Error("featured should be cleared")
	}
	if updated.Description != "" {
		t.Errorf("description should be cleared, got %q", updated.Description)
	}
	// Fields not in the request stay untouched.
	if updated.Name != "Phone Case" {
		t.Errorf("name should be untouched, got %q", updated.Name)
	}
	if !updated.Price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("price should be untouched, got %s", updated.Price)
	}
}

func TestUpdateProductRejectsNegativeStock(t *testing.T) {
	db := setupTestDB(t)
	seedTestProduct(t, db, "Phone Case", "10.00", 5)

	controller := NewProductController(db, "test-bucket")
	router := newTestRouter()
	router.PUT("/products/:id", controller.UpdateProduct)

	resp := performRequest(router, http.MethodPut, "/products/1", `{"stock": -1}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var updated models.Product
	db.First(&updated, 1)
	if updated.Stock != 5 {
		t.Errorf("stock should be untouched, got %d", updated.Stock)
	}
}

func TestGetProductsClampsPagination(t *testing.T) {
	db := setupTestDB(t)
	seedTestProduct(t, db, "Phone Case", "10.00", 5)

	controller := NewProductController(db, "test-bucket")
	router := newTestRouter()
	router.GET("/products", controller.GetProducts)

	resp := performRequest(router, http.MethodGet, "/products?page=0&limit=0", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Metadata struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Metadata.Page != 1 {
		t.Errorf("page should clamp to 1, got %d", body.Metadata.Page)
	}
	if body.Metadata.Limit != 15 {
		t.Errorf("limit should fall back to 15, got %d", body.Metadata.Limit)
	}
}
