// Tests for declarative query compilation.

package rowstore

import (
	"errors"
	"strings"
	"testing"

	"github.com/gridbase/gridbase/internal/grid"
)

func TestBuildRowQuery(t *testing.T) {
	t.Run("bare window", func(t *testing.T) {
		stmt, args, err := buildRowQuery("t1", ViewQuery{Offset: 0, Limit: 10})
		if err != nil {
			t.Fatalf("buildRowQuery: %v", err)
		}
		if !strings.HasPrefix(stmt, "SELECT elem.value FROM tables t, json_each(t.tabledata) AS elem WHERE t.id = ?") {
			t.Errorf("unexpected statement %q", stmt)
		}
		if !strings.HasSuffix(stmt, "ORDER BY elem.key LIMIT ? OFFSET ?") {
			t.Errorf("missing stable order/window in %q", stmt)
		}
		want := []any{"t1", 10, 0}
		if len(args) != len(want) {
			t.Fatalf("args = %v, want %v", args, want)
		}
		for i := range want {
			if args[i] != want[i] {
				t.Errorf("args[%d] = %v, want %v", i, args[i], want[i])
			}
		}
	})

	t.Run("filters bind field paths and values", func(t *testing.T) {
		q := ViewQuery{
			Spec: grid.ViewSpec{
				Filters: []grid.FilterCondition{
					{Field: "status", Operator: grid.OpIs, Value: "Active"},
					{Field: "name", Operator: grid.OpContains, Value: "50%"},
				},
			},
			Limit: 5,
		}
		stmt, args, err := buildRowQuery("t1", q)
		if err != nil {
			t.Fatalf("buildRowQuery: %v", err)
		}
		if strings.Contains(stmt, "Active") || strings.Contains(stmt, "status") {
			t.Errorf("user input leaked into SQL text: %q", stmt)
		}
		if !strings.Contains(stmt, "AND coalesce(CAST(json_extract(elem.value, ?) AS TEXT), '') = ?") {
			t.Errorf("missing equality fragment in %q", stmt)
		}
		// t1, path+value per condition, limit, offset
		if len(args) != 7 {
			t.Fatalf("expected 7 args, got %v", args)
		}
		if args[1] != `$."status"` || args[2] != "Active" {
			t.Errorf("unexpected filter args %v", args)
		}
		if args[4] != `50\%` {
			t.Errorf("LIKE wildcards not escaped: %v", args[4])
		}
	})

	t.Run("sorting terms precede stability tiebreak", func(t *testing.T) {
		q := ViewQuery{
			Spec: grid.ViewSpec{
				Sorting: []grid.SortCriterion{
					{Field: "name", Direction: grid.Asc},
					{Field: "age", Direction: grid.Desc},
				},
			},
			Limit: 5,
		}
		stmt, args, err := buildRowQuery("t1", q)
		if err != nil {
			t.Fatalf("buildRowQuery: %v", err)
		}
		want := "ORDER BY json_extract(elem.value, ?) COLLATE NOCASE ASC, json_extract(elem.value, ?) COLLATE NOCASE DESC, elem.key"
		if !strings.Contains(stmt, want) {
			t.Errorf("statement %q missing %q", stmt, want)
		}
		if args[1] != `$."name"` || args[2] != `$."age"` {
			t.Errorf("unexpected sort args %v", args)
		}
	})

	t.Run("hidden fields use json_remove and keep id", func(t *testing.T) {
		q := ViewQuery{
			Spec:  grid.ViewSpec{HiddenFields: []string{"status", "id", "notes"}},
			Limit: 5,
		}
		stmt, args, err := buildRowQuery("t1", q)
		if err != nil {
			t.Fatalf("buildRowQuery: %v", err)
		}
		if !strings.HasPrefix(stmt, "SELECT json_remove(elem.value, ?, ?)") {
			t.Errorf("unexpected projection in %q", stmt)
		}
		if args[0] != `$."status"` || args[1] != `$."notes"` {
			t.Errorf("id must not be removed: %v", args)
		}
	})

	t.Run("invalid clauses are rejected before SQL", func(t *testing.T) {
		q := ViewQuery{
			Spec: grid.ViewSpec{
				Filters: []grid.FilterCondition{{Field: "name", Operator: "resembles", Value: "x"}},
			},
			Limit: 5,
		}
		_, _, err := buildRowQuery("t1", q)
		var ivd *grid.InvalidViewDefinitionError
		if !errors.As(err, &ivd) {
			t.Fatalf("expected InvalidViewDefinitionError, got %v", err)
		}
	})

	t.Run("zero limit is invalid", func(t *testing.T) {
		_, _, err := buildRowQuery("t1", ViewQuery{Limit: 0})
		var ivd *grid.InvalidViewDefinitionError
		if !errors.As(err, &ivd) {
			t.Fatalf("expected InvalidViewDefinitionError, got %v", err)
		}
		if ivd.Clause != grid.ClauseWindow {
			t.Errorf("expected window clause, got %+v", ivd)
		}
	})
}

func TestJSONPathEscaping(t *testing.T) {
	if got := jsonPath(`we"ird`); got != `$."we\"ird"` {
		t.Errorf("jsonPath = %q", got)
	}
}
