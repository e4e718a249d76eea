// Tests for the JSONL-backed store.

package rowstore

import (
	"errors"
	"testing"

	"github.com/gridbase/gridbase/internal/grid"
)

func TestJSONLPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := t.Context()

	s, err := OpenJSONL(dir)
	if err != nil {
		t.Fatalf("OpenJSONL: %v", err)
	}
	table, err := s.CreateTable(ctx, "Tasks", seedRows())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	view := &grid.View{
		Name:    "All",
		TableID: table.ID,
		ViewSpec: grid.ViewSpec{
			Sorting: []grid.SortCriterion{{Field: "name", Direction: grid.Asc}},
		},
	}
	if err := s.CreateView(ctx, view); err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if err := s.UpsertRows(ctx, table.ID, []grid.Row{{"id": "4", "name": "Dee", "status": "Pending"}}); err != nil {
		t.Fatalf("UpsertRows: %v", err)
	}

	// A fresh store over the same directory sees everything.
	s2, err := OpenJSONL(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rows, err := s2.GetAllRows(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetAllRows: %v", err)
	}
	if len(rows) != 4 || rows[3].ID() != "4" {
		t.Errorf("rows not persisted: %v", rows)
	}
	got, err := s2.GetView(ctx, view.ID)
	if err != nil {
		t.Fatalf("GetView: %v", err)
	}
	if got.Name != "All" || len(got.Sorting) != 1 {
		t.Errorf("view not persisted: %+v", got)
	}
}

func TestJSONLCloneIsolation(t *testing.T) {
	ctx := t.Context()
	s, err := OpenJSONL(t.TempDir())
	if err != nil {
		t.Fatalf("OpenJSONL: %v", err)
	}
	table, err := s.CreateTable(ctx, "Tasks", seedRows())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	rows, err := s.GetAllRows(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetAllRows: %v", err)
	}
	rows[0]["name"] = "Mallory"
	again, err := s.GetAllRows(ctx, table.ID)
	if err != nil {
		t.Fatalf("GetAllRows: %v", err)
	}
	if again[0]["name"] != "Bob" {
		t.Error("store handed out aliased rows")
	}
}

func TestJSONLDeleteTable(t *testing.T) {
	ctx := t.Context()
	s, err := OpenJSONL(t.TempDir())
	if err != nil {
		t.Fatalf("OpenJSONL: %v", err)
	}
	table, err := s.CreateTable(ctx, "Tasks", seedRows())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	view := &grid.View{Name: "All", TableID: table.ID}
	if err := s.CreateView(ctx, view); err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if err := s.DeleteTable(ctx, table.ID); err != nil {
		t.Fatalf("DeleteTable: %v", err)
	}
	if _, err := s.GetAllRows(ctx, table.ID); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
	if _, err := s.GetView(ctx, view.ID); !errors.Is(err, ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
}
