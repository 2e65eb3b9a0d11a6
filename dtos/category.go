package dtos

import (
	"time"

	"catalog-backend/models"

	"github.com/google/uuid"
)

// CreateCategoryRequest is the body for POST /product-categories.
type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,max=100"`
	ParentID *uuid.UUID `json:"parentId"`
}

// UpdateCategoryRequest is the body for PATCH /product-categories/:id.
// Only fields present in the body are applied; an explicit `parentId: null`
// moves the category back to root.
type UpdateCategoryRequest struct {
	Name     *string      `json:"name" binding:"omitempty,min=1,max=100"`
	ParentID OptionalUUID `json:"parentId"`
}

// CategoryResponse is the wire representation of a category. ProductCount is
// computed on read and never persisted; it is omitted (not zero) on embedded
// relation stubs where no count was computed. Parent and Children are
// attached only when the request asked for them.
type CategoryResponse struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	ParentID     *uuid.UUID          `json:"parentId,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	ProductCount *int64              `json:"productCount,omitempty"`
	Parent       *CategoryResponse   `json:"parent,omitempty"`
	Children     []*CategoryResponse `json:"children,omitempty"`
	Products     []ProductResponse   `json:"products,omitempty"`
}

// NewCategoryResponse converts a model row into a shallow response (no
// parent/children attached).
func NewCategoryResponse(c *models.Category, productCount int64) *CategoryResponse {
	resp := newCategoryRef(c)
	resp.ProductCount = &productCount
	return resp
}

// newCategoryRef converts a preloaded relation row. No product count is
// known at this point, so the field stays unset.
func newCategoryRef(c *models.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
