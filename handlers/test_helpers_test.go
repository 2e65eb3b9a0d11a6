package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"catalog-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	// Delete in correct order to respect foreign keys
	testDB.Exec("DELETE FROM order_items")
	testDB.Exec("DELETE FROM campaign_products")
	testDB.Exec("DELETE FROM products")
	testDB.Exec("DELETE FROM categories")
	return testDB
}

// createSQLiteTables creates all tables with SQLite-compatible DDL.
func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"parent_id" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			CONSTRAINT fk_categories_parent FOREIGN KEY ("parent_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_name_parent ON "categories"("name","parent_id")`,
		`CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON "categories"("parent_id")`,

		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL UNIQUE,
			"description" TEXT,
			"price" REAL NOT NULL,
			"stock" INTEGER DEFAULT 0,
			"category_id" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			CONSTRAINT fk_products_category FOREIGN KEY ("category_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category_id ON "products"("category_id")`,
		`CREATE INDEX IF NOT EXISTS idx_products_stock ON "products"("stock")`,

		`CREATE TABLE IF NOT EXISTS "order_items" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"quantity" INTEGER NOT NULL,
			"price" REAL NOT NULL,
			"created_at" DATETIME,
			CONSTRAINT fk_order_items_product FOREIGN KEY ("product_id") REFERENCES "products"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON "order_items"("product_id")`,

		`CREATE TABLE IF NOT EXISTS "campaign_products" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"campaign_name" TEXT NOT NULL,
			"created_at" DATETIME,
			CONSTRAINT fk_campaign_products_product FOREIGN KEY ("product_id") REFERENCES "products"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_campaign_products_product_id ON "campaign_products"("product_id")`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// ==================== Seed Helpers ====================

// seedCategory creates a test category. parentID may be nil for roots.
func seedCategory(db *gorm.DB, name string, parentID *uuid.UUID) models.Category {
	cat := models.Category{
		ID:       uuid.New(),
		Name:     name,
		ParentID: parentID,
	}
	db.Create(&cat)
	return cat
}

// seedProduct creates a test product with the given stock level.
func seedProduct(db *gorm.DB, name string, categoryID *uuid.UUID, price float64, stock int) models.Product {
	prod := models.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	}
	db.Create(&prod)
	return prod
}

// seedOrderItem creates an order line referencing the product.
func seedOrderItem(db *gorm.DB, productID uuid.UUID) models.OrderItem {
	item := models.OrderItem{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  1,
		Price:     9.99,
	}
	db.Create(&item)
	return item
}

// seedCampaignProduct links the product to a campaign.
func seedCampaignProduct(db *gorm.DB, productID uuid.UUID) models.CampaignProduct {
	cp := models.CampaignProduct{
		ID:           uuid.New(),
		ProductID:    productID,
		CampaignName: "Test Campaign",
	}
	db.Create(&cp)
	return cp
}

// ==================== Router Setup Helpers ====================

// setupCategoryRouter sets up routes for category handler tests.
func setupCategoryRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	categoryHandler := &CategoryHandler{DB: db}

	categories := r.Group("/product-categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/roots", categoryHandler.GetRootCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.GET("/:id/hierarchy", categoryHandler.GetCategoryHierarchy)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	return r
}

// setupProductRouter sets up routes for product handler tests.
func setupProductRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	productHandler := &ProductHandler{DB: db}

	products := r.Group("/products")
	products.GET("", productHandler.GetProducts)
	products.GET("/stats", productHandler.GetProductStats)
	products.GET("/low-stock", productHandler.GetLowStockProducts)
	products.GET("/category/:categoryId", productHandler.GetProductsByCategory)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", productHandler.CreateProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.PATCH("/:id/stock", productHandler.UpdateStock)
	products.DELETE("/:id", productHandler.DeleteProduct)

	return r
}

// ==================== Request Helpers ====================

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ==================== Response Helpers ====================

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// parseResponseArray reads the response body into a slice of maps.
func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// errorCode extracts the machine-readable code from an error envelope.
func errorCode(w *httptest.ResponseRecorder) string {
	resp := parseResponse(w)
	code, _ := resp["error"].(string)
	return code
}
