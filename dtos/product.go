package dtos

import (
	"math"
	"time"

	"catalog-backend/models"

	"github.com/google/uuid"
)

// Stock status classification thresholds. A product with zero stock is out of
// stock, 1-10 units is low stock, anything above is in stock.
const (
	StockStatusOutOfStock = "out_of_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusInStock    = "in_stock"

	LowStockThreshold = 10
)

// StockStatus derives the stock classification from the stored stock count.
func StockStatus(stock int) string {
	switch {
	case stock <= 0:
		return StockStatusOutOfStock
	case stock <= LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// ValidPriceScale reports whether price has at most two decimal places.
func ValidPriceScale(price float64) bool {
	scaled := price * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

// CreateProductRequest is the body for POST /products.
type CreateProductRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Description *string    `json:"description"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	Stock       int        `json:"stock" binding:"gte=0"`
	CategoryID  *uuid.UUID `json:"categoryId"`
}

// UpdateProductRequest is the body for PATCH /products/:id. Only fields
// present in the body are applied; an explicit `description: null` clears
// the description.
type UpdateProductRequest struct {
	Name        *string        `json:"name" binding:"omitempty,min=1,max=255"`
	Description OptionalString `json:"description"`
	Price       *float64       `json:"price" binding:"omitempty,gt=0"`
	Stock       *int           `json:"stock" binding:"omitempty,gte=0"`
	CategoryID  *uuid.UUID     `json:"categoryId"`
}

// UpdateStockRequest is the body for PATCH /products/:id/stock. Quantity is a
// signed delta applied to the current stock.
type UpdateStockRequest struct {
	Quantity int `json:"quantity"`
}

// ProductResponse is the wire representation of a product. StockStatus is
// derived from Stock on every read.
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Price       float64           `json:"price"`
	Stock       int               `json:"stock"`
	StockStatus string            `json:"stockStatus"`
	CategoryID  *uuid.UUID        `json:"categoryId,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewProductResponse converts a model row into a response, expanding the
// category relation when it was preloaded.
func NewProductResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		StockStatus: StockStatus(p.Stock),
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		resp.Category = newCategoryRef(p.Category)
	}
	return resp
}

// CategoryProductCount is one row of the per-category product breakdown in
// the stats response.
type CategoryProductCount struct {
	CategoryName string `json:"categoryName"`
	Count        int64  `json:"count"`
}

// ProductStatsResponse is the body of GET /products/stats.
type ProductStatsResponse struct {
	Total      int64                  `json:"total"`
	InStock    int64                  `json:"inStock"`
	LowStock   int64                  `json:"lowStock"`
	OutOfStock int64                  `json:"outOfStock"`
	ByCategory []CategoryProductCount `json:"byCategory"`
}
