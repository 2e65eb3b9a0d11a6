package routes

import (
	"time"

	"catalog-backend/handlers"
	"catalog-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize handlers
	categoryHandler := &handlers.CategoryHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db}

	// Writes share one token bucket per client IP; reads are not limited.
	writeLimiter := middleware.NewRateLimiter(60, time.Minute)

	categories := r.Group("/product-categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/roots", categoryHandler.GetRootCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.GET("/:id/hierarchy", categoryHandler.GetCategoryHierarchy)

		mutating := categories.Group("")
		mutating.Use(writeLimiter.Middleware())
		mutating.POST("", categoryHandler.CreateCategory)
		mutating.PATCH("/:id", categoryHandler.UpdateCategory)
		mutating.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	products := r.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/stats", productHandler.GetProductStats)
		products.GET("/low-stock", productHandler.GetLowStockProducts)
		products.GET("/category/:categoryId", productHandler.GetProductsByCategory)
		products.GET("/:id", productHandler.GetProduct)

		mutating := products.Group("")
		mutating.Use(writeLimiter.Middleware())
		mutating.POST("", productHandler.CreateProduct)
		mutating.PATCH("/:id", productHandler.UpdateProduct)
		mutating.PATCH("/:id/stock", productHandler.UpdateStock)
		mutating.DELETE("/:id", productHandler.DeleteProduct)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
