package dtos

import "testing"

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(1, 20, 150)
	if meta.TotalPages != 8 {
		t.Errorf("expected 8 total pages for 150 rows at 20 per page, got %d", meta.TotalPages)
	}
	if !meta.HasNext {
		t.Error("page 1 of 8 must have a next page")
	}
	if meta.HasPrevious {
		t.Error("page 1 must not have a previous page")
	}
}

func TestNewPaginationMetaLastPage(t *testing.T) {
	meta := NewPaginationMeta(8, 20, 150)
	if meta.HasNext {
		t.Error("last page must not have a next page")
	}
	if !meta.HasPrevious {
		t.Error("page 8 must have a previous page")
	}
}

func TestNewPaginationMetaExactMultiple(t *testing.T) {
	meta := NewPaginationMeta(2, 10, 40)
	if meta.TotalPages != 4 {
		t.Errorf("expected 4 total pages for 40 rows at 10 per page, got %d", meta.TotalPages)
	}
}

func TestNewPaginationMetaEmpty(t *testing.T) {
	meta := NewPaginationMeta(1, 20, 0)
	if meta.TotalPages != 0 {
		t.Errorf("expected 0 total pages for empty listing, got %d", meta.TotalPages)
	}
	if meta.HasNext || meta.HasPrevious {
		t.Error("empty listing must have neither next nor previous page")
	}
}
