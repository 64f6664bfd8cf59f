package todo

import (
	"errors"
	"testing"
)

func TestNewTodo_Success(t *testing.T) {
	t.Parallel()

	got, err := NewTodo("Buy milk", "2%", true)
	if err != nil {
		t.Fatalf("NewTodo returned error: %v", err)
	}
	if got.ID != 0 {
		t.Errorf("expected ID=0 before insert, got %d", got.ID)
	}
	if got.Title != "Buy milk" || got.Description != "2%" || !got.Completed {
		t.Errorf("unexpected todo: %#v", got)
	}
}

func TestNewTodo_EmptyTitle(t *testing.T) {
	t.Parallel()

	_, err := NewTodo("", "desc", false)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestTodo_Replace_KeepsID(t *testing.T) {
	t.Parallel()

	cur := &Todo{ID: 7, Title: "old", Description: "old", Completed: true}
	cur.Replace(&Todo{ID: 99, Title: "new", Description: "", Completed: false})

	if cur.ID != 7 {
		t.Errorf("expected ID=7, got %d", cur.ID)
	}
	if cur.Title != "new" || cur.Description != "" || cur.Completed {
		t.Errorf("expected wholesale replace, got %#v", cur)
	}
}

func TestTodo_Clone_IsIndependent(t *testing.T) {
	t.Parallel()

	orig := &Todo{ID: 1, Title: "a"}
	c := orig.Clone()
	c.Title = "b"
	if orig.Title != "a" {
		t.Errorf("clone mutated original: %#v", orig)
	}
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	if err := ValidateID(1); err != nil {
		t.Errorf("expected nil for id=1, got %v", err)
	}
	for _, id := range []int64{0, -3} {
		if err := ValidateID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("id=%d: expected ErrInvalidID, got %v", id, err)
		}
	}
}
