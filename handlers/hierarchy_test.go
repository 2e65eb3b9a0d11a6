package handlers

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestWouldCreateCycleSelfReference(t *testing.T) {
	db := freshDB()
	cat := seedCategory(db, "Electronics", nil)

	cycle, err := wouldCreateCycle(db, cat.ID, cat.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !cycle {
		t.Error("self reference must be reported as a cycle")
	}
}

func TestWouldCreateCycleDescendant(t *testing.T) {
	db := freshDB()
	root := seedCategory(db, "A", nil)
	mid := seedCategory(db, "B", &root.ID)
	leaf := seedCategory(db, "C", &mid.ID)

	// Re-parenting the root under any of its descendants is a cycle.
	for _, descendant := range []uuid.UUID{mid.ID, leaf.ID} {
		cycle, err := wouldCreateCycle(db, root.ID, descendant)
		if err != nil {
			t.Fatal(err)
		}
		if !cycle {
			t.Errorf("expected cycle when moving root under %s", descendant)
		}
	}
}

func TestWouldCreateCycleUnrelated(t *testing.T) {
	db := freshDB()
	root := seedCategory(db, "A", nil)
	seedCategory(db, "B", &root.ID)
	other := seedCategory(db, "X", nil)

	cycle, err := wouldCreateCycle(db, other.ID, root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cycle {
		t.Error("unrelated parent must not be reported as a cycle")
	}
}

func TestWouldCreateCycleLeafMove(t *testing.T) {
	db := freshDB()
	root := seedCategory(db, "A", nil)
	mid := seedCategory(db, "B", &root.ID)
	leaf := seedCategory(db, "C", &mid.ID)

	// Moving a leaf under the root shortens the chain; no cycle.
	cycle, err := wouldCreateCycle(db, leaf.ID, root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cycle {
		t.Error("moving a leaf up the chain must not be a cycle")
	}
}

func TestBuildCategoryTree(t *testing.T) {
	db := freshDB()
	root := seedCategory(db, "Electronics", nil)
	phones := seedCategory(db, "Phones", &root.ID)
	laptops := seedCategory(db, "Laptops", &root.ID)
	seedCategory(db, "Smartphones", &phones.ID)
	seedProduct(db, "Thinkbook", &laptops.ID, 1200.00, 2)

	tree, err := buildCategoryTree(db, root.ID)
	if err != nil {
		t.Fatal(err)
	}

	if tree.Name != "Electronics" {
		t.Fatalf("expected root 'Electronics', got %s", tree.Name)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Children))
	}
	// Children are ordered by name: Laptops, Phones
	if tree.Children[0].Name != "Laptops" || tree.Children[1].Name != "Phones" {
		t.Fatalf("unexpected child order: %s, %s", tree.Children[0].Name, tree.Children[1].Name)
	}
	if tree.Children[0].ProductCount == nil || *tree.Children[0].ProductCount != 1 {
		t.Errorf("expected Laptops productCount 1, got %v", tree.Children[0].ProductCount)
	}
	if len(tree.Children[1].Children) != 1 || tree.Children[1].Children[0].Name != "Smartphones" {
		t.Errorf("expected Phones -> Smartphones subtree, got %+v", tree.Children[1].Children)
	}
}

func TestBuildCategoryTreeNotFound(t *testing.T) {
	db := freshDB()

	_, err := buildCategoryTree(db, uuid.New())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestCategoryDepth(t *testing.T) {
	db := freshDB()
	root := seedCategory(db, "A", nil)
	mid := seedCategory(db, "B", &root.ID)
	leaf := seedCategory(db, "C", &mid.ID)

	arena, err := loadCategoryArena(db)
	if err != nil {
		t.Fatal(err)
	}

	if d := categoryDepth(arena, root.ID); d != 0 {
		t.Errorf("expected root depth 0, got %d", d)
	}
	if d := categoryDepth(arena, mid.ID); d != 1 {
		t.Errorf("expected mid depth 1, got %d", d)
	}
	if d := categoryDepth(arena, leaf.ID); d != 2 {
		t.Errorf("expected leaf depth 2, got %d", d)
	}
}
