package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB *gorm.DB
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// productNameTaken checks the global product name uniqueness constraint.
// excludeID skips the product being renamed.
func (h *ProductHandler) productNameTaken(name string, excludeID *uuid.UUID) (bool, error) {
	query := h.DB.Model(&models.Product{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// buildProductFilter translates listing query params into a gorm scope shared
// by the count and fetch queries. Returns false if a param was malformed (an
// error response has already been written).
func (h *ProductHandler) buildProductFilter(c *gin.Context, categoryID *uuid.UUID) (func(*gorm.DB) *gorm.DB, bool) {
	var conditions []func(*gorm.DB) *gorm.DB

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
		})
	}

	if categoryID == nil {
		if raw := c.Query("categoryId"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid category ID")
				return nil, false
			}
			categoryID = &parsed
		}
	}
	if categoryID != nil {
		id := *categoryID
		conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
			return db.Where("category_id = ?", id)
		})
	}

	if raw := c.Query("minPrice"); raw != "" {
		minPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeValidationError, "minPrice must be a number")
			return nil, false
		}
		conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
			return db.Where("price >= ?", minPrice)
		})
	}
	if raw := c.Query("maxPrice"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeValidationError, "maxPrice must be a number")
			return nil, false
		}
		conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
			return db.Where("price <= ?", maxPrice)
		})
	}

	if status := c.Query("stockStatus"); status != "" {
		switch status {
		case dtos.StockStatusOutOfStock:
			conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
				return db.Where("stock = 0")
			})
		case dtos.StockStatusLowStock:
			conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
				return db.Where("stock > 0 AND stock <= ?", dtos.LowStockThreshold)
			})
		case dtos.StockStatusInStock:
			conditions = append(conditions, func(db *gorm.DB) *gorm.DB {
				return db.Where("stock > ?", dtos.LowStockThreshold)
			})
		default:
			respondError(c, http.StatusBadRequest, CodeValidationError, "stockStatus must be one of out_of_stock, low_stock, in_stock")
			return nil, false
		}
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, cond := range conditions {
			db = cond(db)
		}
		return db
	}, true
}

// listProducts runs the shared filtered+paginated listing. categoryID forces
// a category scope (used by the by-category endpoint).
func (h *ProductHandler) listProducts(c *gin.Context, categoryID *uuid.UUID) {
	filter, ok := h.buildProductFilter(c, categoryID)
	if !ok {
		return
	}

	sortBy := c.DefaultQuery("sortBy", "createdAt")
	sortOrder := c.DefaultQuery("sortOrder", "desc")
	columns := map[string]string{
		"name":      "name",
		"price":     "price",
		"stock":     "stock",
		"createdAt": "created_at",
	}
	column, validSort := columns[sortBy]
	if !validSort {
		respondError(c, http.StatusBadRequest, CodeValidationError, "sortBy must be one of name, price, stock, createdAt")
		return
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		respondError(c, http.StatusBadRequest, CodeValidationError, "sortOrder must be asc or desc")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := (page - 1) * limit

	var total int64
	if err := filter(h.DB.Model(&models.Product{})).Count(&total).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	query := filter(h.DB.Model(&models.Product{})).Order(column + " " + sortOrder)
	if c.Query("includeCategory") == "true" {
		query = query.Preload("Category")
	}

	var products []models.Product
	if err := query.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	data := make([]dtos.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, dtos.NewProductResponse(&products[i]))
	}

	c.JSON(http.StatusOK, dtos.PaginatedProductsResponse{
		Data: data,
		Meta: dtos.NewPaginationMeta(page, limit, total),
	})
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	h.listProducts(c, nil)
}

// GetProductsByCategory lists products scoped to one category, 404 when the
// category itself is absent.
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid category ID")
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", categoryID).First(&category).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	h.listProducts(c, &categoryID)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid product ID")
		return
	}

	var product models.Product
	if err := h.DB.Preload("Category").Where("id = ?", id).First(&product).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	c.JSON(http.StatusOK, dtos.NewProductResponse(&product))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dtos.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, CodeValidationError, "Invalid data provided", utils.SanitizeValidationError(err))
		return
	}

	if !dtos.ValidPriceScale(req.Price) {
		respondError(c, http.StatusBadRequest, CodeValidationError, "price can have at most 2 decimal places")
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.Where("id = ?", *req.CategoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, CodeForeignKeyConstraint, "Category not found")
				return
			}
			respondDBError(c, err, "Category not found")
			return
		}
	}

	taken, err := h.productNameTaken(req.Name, nil)
	if err != nil {
		respondDBError(c, err, "Product not found")
		return
	}
	if taken {
		respondError(c, http.StatusConflict, CodeDuplicateResource, "Product with this name already exists")
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	h.DB.Preload("Category").First(&product, "id = ?", product.ID)
	c.JSON(http.StatusCreated, dtos.NewProductResponse(&product))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid product ID")
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	var req dtos.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, CodeValidationError, "Invalid data provided", utils.SanitizeValidationError(err))
		return
	}

	if req.Price != nil && !dtos.ValidPriceScale(*req.Price) {
		respondError(c, http.StatusBadRequest, CodeValidationError, "price can have at most 2 decimal places")
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.Where("id = ?", *req.CategoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, CodeForeignKeyConstraint, "Category not found")
				return
			}
			respondDBError(c, err, "Category not found")
			return
		}
	}

	if req.Name != nil && *req.Name != product.Name {
		taken, err := h.productNameTaken(*req.Name, &id)
		if err != nil {
			respondDBError(c, err, "Product not found")
			return
		}
		if taken {
			respondError(c, http.StatusConflict, CodeDuplicateResource, "Product with this name already exists")
			return
		}
		product.Name = *req.Name
	}
	if req.Description.Set {
		product.Description = req.Description.Value
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}

	if err := h.DB.Save(&product).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	h.DB.Preload("Category").First(&product, "id = ?", product.ID)
	c.JSON(http.StatusOK, dtos.NewProductResponse(&product))
}

// UpdateStock applies a signed quantity delta to the product's stock.
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid product ID")
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	var req dtos.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, CodeValidationError, "Invalid data provided", utils.SanitizeValidationError(err))
		return
	}

	if product.Stock+req.Quantity < 0 {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Insufficient stock")
		return
	}

	if err := h.DB.Model(&product).Update("stock", product.Stock+req.Quantity).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	h.DB.Preload("Category").First(&product, "id = ?", product.ID)
	c.JSON(http.StatusOK, dtos.NewProductResponse(&product))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid product ID")
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	var orderRefs int64
	if err := h.DB.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&orderRefs).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}
	if orderRefs > 0 {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Cannot delete product that has been ordered")
		return
	}

	var campaignRefs int64
	if err := h.DB.Model(&models.CampaignProduct{}).Where("product_id = ?", id).Count(&campaignRefs).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}
	if campaignRefs > 0 {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Cannot delete product that is part of campaigns")
		return
	}

	if err := h.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetLowStockProducts lists products at or below the given threshold,
// lowest stock first.
func (h *ProductHandler) GetLowStockProducts(c *gin.Context) {
	threshold := dtos.LowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, http.StatusBadRequest, CodeValidationError, "threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}

	var products []models.Product
	if err := h.DB.Preload("Category").
		Where("stock <= ?", threshold).
		Order("stock asc").
		Find(&products).Error; err != nil {
		respondDBError(c, err, "Product not found")
		return
	}

	result := make([]dtos.ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, dtos.NewProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, result)
}

// GetProductStats returns catalog-wide stock counts plus a per-category
// product breakdown.
func (h *ProductHandler) GetProductStats(c *gin.Context) {
	var stats dtos.ProductStatsResponse

	counts := []struct {
		dest  *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&stats.Total, func(db *gorm.DB) *gorm.DB { return db }},
		{&stats.InStock, func(db *gorm.DB) *gorm.DB { return db.Where("stock > ?", dtos.LowStockThreshold) }},
		{&stats.LowStock, func(db *gorm.DB) *gorm.DB {
			return db.Where("stock > 0 AND stock <= ?", dtos.LowStockThreshold)
		}},
		{&stats.OutOfStock, func(db *gorm.DB) *gorm.DB { return db.Where("stock = 0") }},
	}
	for _, count := range counts {
		if err := count.scope(h.DB.Model(&models.Product{})).Count(count.dest).Error; err != nil {
			respondDBError(c, err, "Product not found")
			return
		}
	}

	byCategory := []dtos.CategoryProductCount{}
	err := h.DB.Model(&models.Category{}).
		Select("categories.name AS category_name, COUNT(products.id) AS count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name").
		Order("categories.name asc").
		Scan(&byCategory).Error
	if err != nil {
		respondDBError(c, err, "Product not found")
		return
	}
	stats.ByCategory = byCategory

	c.JSON(http.StatusOK, stats)
}
