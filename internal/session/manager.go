package session

import (
	"context"
	"fmt"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/rowstore"
)

// Manager owns the session's view definition. Mutations apply to the
// in-memory view immediately and reset the row cache, so the grid
// refetches from offset 0 under the new definition. Save persists the
// whole view document; on failure the in-memory definition rolls back
// to the last confirmed value and the cache resets again.
type Manager struct {
	store rowstore.ViewStore
	cache *Cache

	current   *grid.View
	confirmed *grid.View
}

// NewManager binds a view to its persistence store and row cache. The
// given view is taken as the last confirmed state.
func NewManager(store rowstore.ViewStore, cache *Cache, view *grid.View) *Manager {
	m := &Manager{
		store:     store,
		cache:     cache,
		current:   view.Clone(),
		confirmed: view.Clone(),
	}
	m.cache.Reset(m.current.ViewSpec)
	return m
}

// View returns a copy of the current in-memory view definition.
func (m *Manager) View() *grid.View {
	return m.current.Clone()
}

// Dirty reports whether the view differs from its last confirmed state.
func (m *Manager) Dirty() bool {
	return !m.current.ViewSpec.Equal(m.confirmed.ViewSpec) || m.current.Name != m.confirmed.Name
}

// ReplaceFilters swaps the whole filter list and resets pagination.
func (m *Manager) ReplaceFilters(filters []grid.FilterCondition) {
	m.current.Filters = grid.CloneFilters(filters)
	m.cache.Reset(m.current.ViewSpec)
}

// ReplaceSorting swaps the whole sort list and resets pagination.
func (m *Manager) ReplaceSorting(sorting []grid.SortCriterion) {
	m.current.Sorting = grid.CloneSorting(sorting)
	m.cache.Reset(m.current.ViewSpec)
}

// ReplaceHiddenFields swaps the hidden field set and resets pagination,
// so already-fetched pages never mix projections.
func (m *Manager) ReplaceHiddenFields(hidden []string) {
	m.current.HiddenFields = append([]string(nil), hidden...)
	m.cache.Reset(m.current.ViewSpec)
}

// Rename changes the view's display name. No cache reset: the row
// sequence is unaffected.
func (m *Manager) Rename(name string) {
	m.current.Name = name
}

// Save persists the current view as a whole document. On any failure,
// validation included, the in-memory view rolls back to the last
// confirmed state and the cache resets under it.
func (m *Manager) Save(ctx context.Context) error {
	if err := m.store.SaveView(ctx, m.current.Clone()); err != nil {
		m.current = m.confirmed.Clone()
		m.cache.Reset(m.current.ViewSpec)
		return fmt.Errorf("saving view %s: %w", m.current.ID, err)
	}
	m.confirmed = m.current.Clone()
	return nil
}
