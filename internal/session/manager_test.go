package session

import (
	"errors"
	"testing"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
)

func testView(tableID ksid.ID) *grid.View {
	return &grid.View{
		ID:      ksid.NewID(),
		Name:    "All rows",
		TableID: tableID,
		ViewSpec: grid.ViewSpec{
			Filters: []grid.FilterCondition{
				{Field: "status", Operator: grid.OpIs, Value: "Active"},
			},
		},
	}
}

func TestManagerMutationsResetCache(t *testing.T) {
	tableID := ksid.NewID()
	exec := &stubExecutor{rows: numberedRows(6)}
	cache := NewCache(exec, tableID, grid.ViewSpec{}, 3)
	m := NewManager(&stubViewStore{}, cache, testView(tableID))

	if err := cache.LoadMore(t.Context()); err != nil {
		t.Fatal(err)
	}
	if got := cache.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	t.Run("filters", func(t *testing.T) {
		m.ReplaceFilters([]grid.FilterCondition{
			{Field: "name", Operator: grid.OpContains, Value: "bo"},
		})
		if got := cache.Len(); got != 0 {
			t.Fatalf("Len() = %d after filter change, want 0", got)
		}
		if got := len(m.View().Filters); got != 1 {
			t.Fatalf("got %d filters, want 1", got)
		}
		if !m.Dirty() {
			t.Fatal("view not dirty after filter change")
		}
	})

	t.Run("sorting", func(t *testing.T) {
		if err := cache.LoadMore(t.Context()); err != nil {
			t.Fatal(err)
		}
		m.ReplaceSorting([]grid.SortCriterion{{Field: "n", Direction: grid.Desc}})
		if got := cache.Len(); got != 0 {
			t.Fatalf("Len() = %d after sort change, want 0", got)
		}
	})

	t.Run("hidden fields", func(t *testing.T) {
		if err := cache.LoadMore(t.Context()); err != nil {
			t.Fatal(err)
		}
		m.ReplaceHiddenFields([]string{"n"})
		if got := cache.Len(); got != 0 {
			t.Fatalf("Len() = %d after hidden fields change, want 0", got)
		}
	})

	t.Run("rename keeps pages", func(t *testing.T) {
		if err := cache.LoadMore(t.Context()); err != nil {
			t.Fatal(err)
		}
		m.Rename("Mine")
		if got := cache.Len(); got != 3 {
			t.Fatalf("Len() = %d after rename, want 3", got)
		}
		if got := m.View().Name; got != "Mine" {
			t.Fatalf("Name = %q, want %q", got, "Mine")
		}
	})
}

func TestManagerSave(t *testing.T) {
	tableID := ksid.NewID()
	store := &stubViewStore{}
	exec := &stubExecutor{rows: numberedRows(4)}
	cache := NewCache(exec, tableID, grid.ViewSpec{}, 2)
	m := NewManager(store, cache, testView(tableID))

	m.ReplaceSorting([]grid.SortCriterion{{Field: "name", Direction: grid.Asc}})
	if err := m.Save(t.Context()); err != nil {
		t.Fatal(err)
	}
	if m.Dirty() {
		t.Fatal("view still dirty after save")
	}
	if got := len(store.saved); got != 1 {
		t.Fatalf("got %d saves, want 1", got)
	}
	if got := len(store.saved[0].Sorting); got != 1 {
		t.Fatal("persisted view missing the new sorting")
	}
}

func TestManagerSaveFailureRollsBack(t *testing.T) {
	tableID := ksid.NewID()
	boom := errors.New("disk full")
	store := &stubViewStore{saveErr: boom}
	exec := &stubExecutor{rows: numberedRows(4)}
	cache := NewCache(exec, tableID, grid.ViewSpec{}, 2)
	m := NewManager(store, cache, testView(tableID))

	m.ReplaceFilters(nil)
	if err := cache.LoadMore(t.Context()); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(t.Context()); !errors.Is(err, boom) {
		t.Fatalf("Save() = %v, want %v", err, boom)
	}
	// Back to the confirmed definition, pagination restarted under it.
	got := m.View()
	if len(got.Filters) != 1 || got.Filters[0].Value != "Active" {
		t.Fatalf("view after rollback = %+v, want the confirmed filters", got.Filters)
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() = %d after rollback, want 0", cache.Len())
	}
	if m.Dirty() {
		t.Fatal("view dirty after rollback")
	}
}
