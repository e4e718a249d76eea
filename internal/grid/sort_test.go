// Tests for sort compilation and ordering semantics.

package grid

import (
	"errors"
	"testing"
)

func sortedIDs(t *testing.T, rows []Row, sorting []SortCriterion) []string {
	t.Helper()
	c, err := CompileComparator(sorting)
	if err != nil {
		t.Fatalf("CompileComparator: %v", err)
	}
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	SortRows(sorted, c)
	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.ID()
	}
	return ids
}

func TestCompileComparator(t *testing.T) {
	rows := []Row{
		{"id": "1", "name": "Bob", "age": float64(30), "status": "Active"},
		{"id": "2", "name": "amy", "age": float64(25), "status": "Pending"},
		{"id": "3", "name": "Cal", "age": float64(30), "status": "Active"},
	}

	t.Run("asc is case-insensitive", func(t *testing.T) {
		got := sortedIDs(t, rows, []SortCriterion{{Field: "name", Direction: Asc}})
		want := []string{"2", "1", "3"} // amy, Bob, Cal
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("desc flips", func(t *testing.T) {
		got := sortedIDs(t, rows, []SortCriterion{{Field: "name", Direction: Desc}})
		want := []string{"3", "1", "2"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("numbers sort numerically", func(t *testing.T) {
		numeric := []Row{
			{"id": "a", "n": float64(10)},
			{"id": "b", "n": float64(9)},
			{"id": "c", "n": float64(100)},
		}
		got := sortedIDs(t, numeric, []SortCriterion{{Field: "n", Direction: Asc}})
		want := []string{"b", "a", "c"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("secondary criterion breaks primary ties", func(t *testing.T) {
		got := sortedIDs(t, rows, []SortCriterion{
			{Field: "age", Direction: Desc},
			{Field: "name", Direction: Desc},
		})
		want := []string{"3", "1", "2"} // age 30: Cal before Bob, then amy
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("ties preserve original order", func(t *testing.T) {
		got := sortedIDs(t, rows, []SortCriterion{{Field: "status", Direction: Asc}})
		want := []string{"1", "3", "2"} // Active(1,3) keeps insertion order, then Pending
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("missing values sort first ascending", func(t *testing.T) {
		sparse := []Row{
			{"id": "a", "rank": "high"},
			{"id": "b"},
			{"id": "c", "rank": nil},
			{"id": "d", "rank": float64(2)},
		}
		got := sortedIDs(t, sparse, []SortCriterion{{Field: "rank", Direction: Asc}})
		// empty (b, c in original order), then number, then string
		want := []string{"b", "c", "d", "a"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("no criteria keeps order", func(t *testing.T) {
		got := sortedIDs(t, rows, nil)
		want := []string{"1", "2", "3"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})
}

func TestCompileComparatorInvalid(t *testing.T) {
	_, err := CompileComparator([]SortCriterion{{Field: "name", Direction: "sideways"}})
	var ivd *InvalidViewDefinitionError
	if !errors.As(err, &ivd) {
		t.Fatalf("expected InvalidViewDefinitionError, got %v", err)
	}
	if ivd.Clause != ClauseSort || ivd.Index != 0 {
		t.Errorf("error should identify sort clause 0, got %+v", ivd)
	}
}
