package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"catalog-backend/dtos"
	"catalog-backend/models"
	"catalog-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB *gorm.DB
}

// siblingNameTaken checks whether a category with the given name already
// exists under the same parent (NULL-safe: all roots form one sibling set).
// excludeID skips the category being renamed.
func (h *CategoryHandler) siblingNameTaken(name string, parentID, excludeID *uuid.UUID) (bool, error) {
	query := h.DB.Model(&models.Category{}).Where("name = ?", name)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// categoryResponse builds the response for one category, computing its
// product count and optionally attaching parent, children (with their own
// counts) and products.
func (h *CategoryHandler) categoryResponse(category *models.Category, includeParent, includeChildren, includeProducts bool) (*dtos.CategoryResponse, error) {
	count, err := countProducts(h.DB, category.ID)
	if err != nil {
		return nil, err
	}
	resp := dtos.NewCategoryResponse(category, count)

	if includeParent && category.ParentID != nil {
		var parent models.Category
		if err := h.DB.Where("id = ?", *category.ParentID).First(&parent).Error; err == nil {
			parentCount, err := countProducts(h.DB, parent.ID)
			if err != nil {
				return nil, err
			}
			resp.Parent = dtos.NewCategoryResponse(&parent, parentCount)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if includeChildren {
		var children []models.Category
		if err := h.DB.Where("parent_id = ?", category.ID).Order("name asc").Find(&children).Error; err != nil {
			return nil, err
		}
		for i := range children {
			childCount, err := countProducts(h.DB, children[i].ID)
			if err != nil {
				return nil, err
			}
			resp.Children = append(resp.Children, dtos.NewCategoryResponse(&children[i], childCount))
		}
	}

	if includeProducts {
		var products []models.Product
		if err := h.DB.Where("category_id = ?", category.ID).Find(&products).Error; err != nil {
			return nil, err
		}
		for i := range products {
			resp.Products = append(resp.Products, dtos.NewProductResponse(&products[i]))
		}
	}

	return resp, nil
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dtos.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, CodeValidationError, "Invalid data provided", utils.SanitizeValidationError(err))
		return
	}

	if req.ParentID != nil {
		var parent models.Category
		if err := h.DB.Where("id = ?", *req.ParentID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, CodeForeignKeyConstraint, "Parent category not found")
				return
			}
			respondDBError(c, err, "Parent category not found")
			return
		}
	}

	taken, err := h.siblingNameTaken(req.Name, req.ParentID, nil)
	if err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	if taken {
		respondError(c, http.StatusConflict, CodeDuplicateResource, "Category name already exists at this level")
		return
	}

	category := models.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	resp, err := h.categoryResponse(&category, true, true, false)
	if err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	includeProducts := c.Query("includeProducts") == "true"
	includeParent := c.DefaultQuery("includeParent", "true") == "true"
	includeChildren := c.DefaultQuery("includeChildren", "true") == "true"
	rootsOnly := c.Query("rootsOnly") == "true"
	sortBy := c.DefaultQuery("sortBy", "name")
	sortOrder := c.DefaultQuery("sortOrder", "asc")

	if sortBy != "name" && sortBy != "createdAt" && sortBy != "productCount" {
		respondError(c, http.StatusBadRequest, CodeValidationError, "sortBy must be one of name, createdAt, productCount")
		return
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		respondError(c, http.StatusBadRequest, CodeValidationError, "sortOrder must be asc or desc")
		return
	}

	query := h.DB.Model(&models.Category{})

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if parentID := c.Query("parentId"); parentID != "" {
		parsed, err := uuid.Parse(parentID)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid parent category ID")
			return
		}
		query = query.Where("parent_id = ?", parsed)
	}
	if rootsOnly {
		query = query.Where("parent_id IS NULL")
	}

	// productCount ordering is applied in memory after the fetch; the count
	// is a derived field, not a column.
	switch sortBy {
	case "createdAt":
		query = query.Order("created_at " + sortOrder)
	case "productCount":
		query = query.Order("name asc")
	default:
		query = query.Order("name " + sortOrder)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	// Depth filtering walks the id -> parent arena in memory.
	if levelStr := c.Query("level"); levelStr != "" {
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 0 {
			respondError(c, http.StatusBadRequest, CodeValidationError, "level must be a non-negative integer")
			return
		}
		arena, err := loadCategoryArena(h.DB)
		if err != nil {
			respondDBError(c, err, "Product category not found")
			return
		}
		filtered := categories[:0]
		for _, cat := range categories {
			if categoryDepth(arena, cat.ID) == level {
				filtered = append(filtered, cat)
			}
		}
		categories = filtered
	}

	result := make([]*dtos.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp, err := h.categoryResponse(&categories[i], includeParent, includeChildren, includeProducts)
		if err != nil {
			respondDBError(c, err, "Product category not found")
			return
		}
		result = append(result, resp)
	}

	if sortBy == "productCount" {
		count := func(r *dtos.CategoryResponse) int64 {
			if r.ProductCount == nil {
				return 0
			}
			return *r.ProductCount
		}
		sort.SliceStable(result, func(i, j int) bool {
			if sortOrder == "desc" {
				return count(result[i]) > count(result[j])
			}
			return count(result[i]) < count(result[j])
		})
	}

	c.JSON(http.StatusOK, result)
}

// GetRootCategories returns all root categories sorted by name, each with one
// level of eagerly-loaded children.
func (h *CategoryHandler) GetRootCategories(c *gin.Context) {
	var roots []models.Category
	if err := h.DB.Where("parent_id IS NULL").Order("name asc").Find(&roots).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	result := make([]*dtos.CategoryResponse, 0, len(roots))
	for i := range roots {
		resp, err := h.categoryResponse(&roots[i], false, true, false)
		if err != nil {
			respondDBError(c, err, "Product category not found")
			return
		}
		result = append(result, resp)
	}

	c.JSON(http.StatusOK, result)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid category ID")
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	resp, err := h.categoryResponse(&category, true, true, false)
	if err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCategoryHierarchy returns the category with every descendant expanded
// recursively.
func (h *CategoryHandler) GetCategoryHierarchy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid category ID")
		return
	}

	tree, err := buildCategoryTree(h.DB, id)
	if err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid category ID")
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	var req dtos.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, CodeValidationError, "Invalid data provided", utils.SanitizeValidationError(err))
		return
	}

	// An explicit `parentId: null` re-roots the category; the parent checks
	// only apply when a concrete parent was sent.
	if req.ParentID.Set && req.ParentID.Value != nil {
		newParent := *req.ParentID.Value
		if newParent == id {
			respondError(c, http.StatusBadRequest, CodeValidationError, "Category cannot be its own parent")
			return
		}

		var parent models.Category
		if err := h.DB.Where("id = ?", newParent).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, CodeForeignKeyConstraint, "Parent category not found")
				return
			}
			respondDBError(c, err, "Parent category not found")
			return
		}

		// The walk reads the pre-mutation chain; it must run before the
		// update is persisted.
		circular, err := wouldCreateCycle(h.DB, id, newParent)
		if err != nil {
			respondDBError(c, err, "Product category not found")
			return
		}
		if circular {
			respondError(c, http.StatusBadRequest, CodeValidationError, "Circular dependency detected")
			return
		}
	}

	if req.Name != nil {
		resultingParent := category.ParentID
		if req.ParentID.Set {
			resultingParent = req.ParentID.Value
		}
		taken, err := h.siblingNameTaken(*req.Name, resultingParent, &id)
		if err != nil {
			respondDBError(c, err, "Product category not found")
			return
		}
		if taken {
			respondError(c, http.StatusConflict, CodeDuplicateResource, "Category name already exists at this level")
			return
		}
		category.Name = *req.Name
	}
	if req.ParentID.Set {
		category.ParentID = req.ParentID.Value
	}

	if err := h.DB.Save(&category).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	resp, err := h.categoryResponse(&category, true, true, false)
	if err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Invalid category ID")
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	var childCount int64
	if err := h.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	if childCount > 0 {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Cannot delete category with subcategories")
		return
	}

	productCount, err := countProducts(h.DB, id)
	if err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}
	if productCount > 0 {
		respondError(c, http.StatusBadRequest, CodeValidationError, "Cannot delete category with products")
		return
	}

	if err := h.DB.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Product category not found")
		return
	}

	c.Status(http.StatusNoContent)
}
