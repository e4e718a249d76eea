// Tests for filter compilation and operator semantics.

package grid

import (
	"errors"
	"testing"
)

func TestCompilePredicateOperators(t *testing.T) {
	row := Row{"id": "r1", "name": "Alice Johnson", "status": "Active", "age": float64(30), "notes": ""}

	tests := []struct {
		name string
		cond FilterCondition
		want bool
	}{
		{"contains match", FilterCondition{Field: "name", Operator: OpContains, Value: "john"}, true},
		{"contains case fold", FilterCondition{Field: "name", Operator: OpContains, Value: "ALICE"}, true},
		{"contains miss", FilterCondition{Field: "name", Operator: OpContains, Value: "bob"}, false},
		{"contains on number", FilterCondition{Field: "age", Operator: OpContains, Value: "3"}, true},
		{"contains empty value", FilterCondition{Field: "name", Operator: OpContains, Value: ""}, true},
		{"contains missing field", FilterCondition{Field: "ghost", Operator: OpContains, Value: "x"}, false},
		{"does not contain", FilterCondition{Field: "name", Operator: OpNotContains, Value: "bob"}, true},
		{"does not contain missing field", FilterCondition{Field: "ghost", Operator: OpNotContains, Value: "x"}, true},
		{"is exact", FilterCondition{Field: "status", Operator: OpIs, Value: "Active"}, true},
		{"is is case sensitive", FilterCondition{Field: "status", Operator: OpIs, Value: "active"}, false},
		{"is on number", FilterCondition{Field: "age", Operator: OpIs, Value: "30"}, true},
		{"is not", FilterCondition{Field: "status", Operator: OpIsNot, Value: "Pending"}, true},
		{"starts with", FilterCondition{Field: "name", Operator: OpStartsWith, Value: "ali"}, true},
		{"starts with miss", FilterCondition{Field: "name", Operator: OpStartsWith, Value: "johnson"}, false},
		{"ends with", FilterCondition{Field: "name", Operator: OpEndsWith, Value: "SON"}, true},
		{"is empty on empty string", FilterCondition{Field: "notes", Operator: OpIsEmpty, Value: ""}, true},
		{"is empty on missing field", FilterCondition{Field: "ghost", Operator: OpIsEmpty, Value: ""}, true},
		{"is empty on set field", FilterCondition{Field: "name", Operator: OpIsEmpty, Value: ""}, false},
		{"is not empty", FilterCondition{Field: "name", Operator: OpIsNotEmpty, Value: ""}, true},
		{"is not empty on missing field", FilterCondition{Field: "ghost", Operator: OpIsNotEmpty, Value: ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePredicate([]FilterCondition{tt.cond})
			if err != nil {
				t.Fatalf("CompilePredicate: %v", err)
			}
			if got := p(row); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompilePredicateNullValue(t *testing.T) {
	row := Row{"id": "r1", "assignee": nil}
	p, err := CompilePredicate([]FilterCondition{{Field: "assignee", Operator: OpIsEmpty}})
	if err != nil {
		t.Fatalf("CompilePredicate: %v", err)
	}
	if !p(row) {
		t.Error("null value should be empty")
	}
}

func TestCompilePredicateConjunction(t *testing.T) {
	rows := []Row{
		{"id": "1", "name": "Bob", "status": "Active"},
		{"id": "2", "name": "amy", "status": "Pending"},
		{"id": "3", "name": "Cal", "status": "Active"},
	}
	p, err := CompilePredicate([]FilterCondition{
		{Field: "status", Operator: OpIs, Value: "Active"},
		{Field: "name", Operator: OpContains, Value: "b"},
	})
	if err != nil {
		t.Fatalf("CompilePredicate: %v", err)
	}
	var got []string
	for _, r := range rows {
		if p(r) {
			got = append(got, r.ID())
		}
	}
	if len(got) != 1 || got[0] != "1" {
		t.Errorf("expected only row 1, got %v", got)
	}
}

func TestCompilePredicateEmptyList(t *testing.T) {
	p, err := CompilePredicate(nil)
	if err != nil {
		t.Fatalf("CompilePredicate: %v", err)
	}
	if !p(Row{"anything": "at all"}) {
		t.Error("empty filter list must pass every row")
	}
}

func TestCompilePredicateInvalid(t *testing.T) {
	t.Run("unknown operator", func(t *testing.T) {
		_, err := CompilePredicate([]FilterCondition{
			{Field: "name", Operator: OpIs, Value: "x"},
			{Field: "name", Operator: "fuzzy matches", Value: "x"},
		})
		var ivd *InvalidViewDefinitionError
		if !errors.As(err, &ivd) {
			t.Fatalf("expected InvalidViewDefinitionError, got %v", err)
		}
		if ivd.Clause != ClauseFilter || ivd.Index != 1 {
			t.Errorf("error should identify filter clause 1, got %+v", ivd)
		}
	})

	t.Run("empty field", func(t *testing.T) {
		_, err := CompilePredicate([]FilterCondition{{Operator: OpIs, Value: "x"}})
		var ivd *InvalidViewDefinitionError
		if !errors.As(err, &ivd) {
			t.Fatalf("expected InvalidViewDefinitionError, got %v", err)
		}
	})
}
