// Converts between dto wire types and grid domain types.

package handlers

import (
	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/rowstore"
	"github.com/gridbase/gridbase/internal/server/dto"
)

func specFromDefinition(d dto.ViewDefinition) grid.ViewSpec {
	spec := grid.ViewSpec{}
	for _, f := range d.Filters {
		spec.Filters = append(spec.Filters, grid.FilterCondition{
			Field:    f.Field,
			Operator: grid.Operator(f.Operator),
			Value:    f.Value,
		})
	}
	for _, s := range d.Sorting {
		spec.Sorting = append(spec.Sorting, grid.SortCriterion{
			Field:     s.Field,
			Direction: grid.Direction(s.Direction),
		})
	}
	spec.HiddenFields = append(spec.HiddenFields, d.HiddenFields...)
	return spec
}

func definitionFromSpec(spec grid.ViewSpec) dto.ViewDefinition {
	d := dto.ViewDefinition{
		Filters:      []dto.Filter{},
		Sorting:      []dto.Sort{},
		HiddenFields: []string{},
	}
	for _, f := range spec.Filters {
		d.Filters = append(d.Filters, dto.Filter{
			Field:    f.Field,
			Operator: string(f.Operator),
			Value:    f.Value,
		})
	}
	for _, s := range spec.Sorting {
		d.Sorting = append(d.Sorting, dto.Sort{
			Field:     s.Field,
			Direction: string(s.Direction),
		})
	}
	d.HiddenFields = append(d.HiddenFields, spec.HiddenFields...)
	return d
}

func tableResponse(t rowstore.Table) dto.TableResponse {
	return dto.TableResponse{ID: t.ID.String(), Name: t.Name}
}

func viewResponse(v *grid.View) dto.ViewResponse {
	return dto.ViewResponse{
		ID:             v.ID.String(),
		TableID:        v.TableID.String(),
		Name:           v.Name,
		ViewDefinition: definitionFromSpec(v.ViewSpec),
	}
}

func rowsFromDTO(rows []dto.Row) []grid.Row {
	out := make([]grid.Row, len(rows))
	for i, r := range rows {
		out[i] = grid.Row(r)
	}
	return out
}

func rowsToDTO(rows []grid.Row) []dto.Row {
	out := make([]dto.Row, len(rows))
	for i, r := range rows {
		out[i] = dto.Row(r)
	}
	return out
}
