package handlers

import (
	"errors"

	"catalog-backend/dtos"
	"catalog-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// wouldCreateCycle reports whether re-parenting categoryID under
// proposedParentID would make the category its own descendant. It walks the
// parent chain upward from the proposed parent, reading the not-yet-mutated
// rows; a revisited id means the stored chain is already corrupt and is
// treated as a cycle. O(depth) point reads, no caching across calls.
func wouldCreateCycle(db *gorm.DB, categoryID, proposedParentID uuid.UUID) (bool, error) {
	visited := map[uuid.UUID]bool{}
	current := &proposedParentID

	for current != nil {
		if *current == categoryID {
			return true, nil
		}
		if visited[*current] {
			return true, nil
		}
		visited[*current] = true

		var parent struct {
			ParentID *uuid.UUID
		}
		err := db.Model(&models.Category{}).
			Select("parent_id").
			Where("id = ?", *current).
			Take(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling parent reference terminates the walk.
				return false, nil
			}
			return false, err
		}
		current = parent.ParentID
	}

	return false, nil
}

// buildCategoryTree loads the category and recursively expands every child
// into its full subtree, attaching productCount at each level. Cycle safety
// is enforced at write time, so the recursion terminates.
func buildCategoryTree(db *gorm.DB, id uuid.UUID) (*dtos.CategoryResponse, error) {
	var category models.Category
	if err := db.Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}

	count, err := countProducts(db, id)
	if err != nil {
		return nil, err
	}
	node := dtos.NewCategoryResponse(&category, count)

	var children []models.Category
	if err := db.Where("parent_id = ?", id).Order("name asc").Find(&children).Error; err != nil {
		return nil, err
	}

	for _, child := range children {
		subtree, err := buildCategoryTree(db, child.ID)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, subtree)
	}

	return node, nil
}

// countProducts returns the number of products referencing the category.
func countProducts(db *gorm.DB, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// loadCategoryArena fetches the id -> parent mapping for all categories, used
// to compute depths in memory without per-node queries.
func loadCategoryArena(db *gorm.DB) (map[uuid.UUID]*uuid.UUID, error) {
	var rows []struct {
		ID       uuid.UUID
		ParentID *uuid.UUID
	}
	if err := db.Model(&models.Category{}).Select("id", "parent_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	arena := make(map[uuid.UUID]*uuid.UUID, len(rows))
	for _, row := range rows {
		arena[row.ID] = row.ParentID
	}
	return arena, nil
}

// categoryDepth walks the arena upward and returns the node's depth (roots
// are level 0). The walk is bounded by the arena size so a corrupt chain
// cannot loop forever.
func categoryDepth(arena map[uuid.UUID]*uuid.UUID, id uuid.UUID) int {
	depth := 0
	current := arena[id]
	for current != nil && depth <= len(arena) {
		depth++
		current = arena[*current]
	}
	return depth
}
