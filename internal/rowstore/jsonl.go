// JSONL-backed row store: one line-oriented file per table.

package rowstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
)

// JSONL stores each table's rows as a line-oriented JSON file under
// rows/, with table metadata and view documents in their own files. It
// has no declarative query capability; it backs tests, local tooling, and
// the reference executor.
type JSONL struct {
	dir    string
	tables *jsonlFile[Table]
	views  *jsonlFile[*grid.View]

	mu      sync.Mutex
	rowFile map[ksid.ID]*jsonlFile[grid.Row]
}

var _ Store = (*JSONL)(nil)
var _ ViewStore = (*JSONL)(nil)

// OpenJSONL opens (or creates) a JSONL store rooted at dir.
func OpenJSONL(dir string) (*JSONL, error) {
	tables, err := openJSONLFile[Table](filepath.Join(dir, "tables.jsonl"))
	if err != nil {
		return nil, err
	}
	views, err := openJSONLFile[*grid.View](filepath.Join(dir, "views.jsonl"))
	if err != nil {
		return nil, err
	}
	return &JSONL{
		dir:     dir,
		tables:  tables,
		views:   views,
		rowFile: make(map[ksid.ID]*jsonlFile[grid.Row]),
	}, nil
}

func (s *JSONL) rows(tableID ksid.ID) (*jsonlFile[grid.Row], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.rowFile[tableID]; ok {
		return f, nil
	}
	f, err := openJSONLFile[grid.Row](filepath.Join(s.dir, "rows", tableID.String()+".jsonl"))
	if err != nil {
		return nil, err
	}
	s.rowFile[tableID] = f
	return f, nil
}

func (s *JSONL) findTable(tableID ksid.ID) (Table, bool) {
	for _, t := range s.tables.All() {
		if t.ID == tableID {
			return t, true
		}
	}
	return Table{}, false
}

// CreateTable creates a table with the given initial rows.
func (s *JSONL) CreateTable(ctx context.Context, name string, rows []grid.Row) (Table, error) {
	t := Table{ID: ksid.NewID(), Name: name}
	if err := s.tables.Append(t); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	f, err := s.rows(t.ID)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := f.Replace(rows); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return t, nil
}

// GetTable returns table metadata.
func (s *JSONL) GetTable(ctx context.Context, tableID ksid.ID) (Table, error) {
	t, ok := s.findTable(tableID)
	if !ok {
		return Table{}, ErrTableNotFound
	}
	return t, nil
}

// ListTables returns all tables in creation order.
func (s *JSONL) ListTables(ctx context.Context) ([]Table, error) {
	return s.tables.All(), nil
}

// DeleteTable removes a table, its rows file, and its views.
func (s *JSONL) DeleteTable(ctx context.Context, tableID ksid.ID) error {
	all := s.tables.All()
	kept := make([]Table, 0, len(all))
	found := false
	for _, t := range all {
		if t.ID == tableID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return ErrTableNotFound
	}
	if err := s.tables.Replace(kept); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	views := s.views.All()
	keptViews := make([]*grid.View, 0, len(views))
	for _, v := range views {
		if v.TableID != tableID {
			keptViews = append(keptViews, v)
		}
	}
	if err := s.views.Replace(keptViews); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.mu.Lock()
	delete(s.rowFile, tableID)
	s.mu.Unlock()
	_ = os.Remove(filepath.Join(s.dir, "rows", tableID.String()+".jsonl"))
	return nil
}

// GetAllRows returns every row of the table in canonical order.
func (s *JSONL) GetAllRows(ctx context.Context, tableID ksid.ID) ([]grid.Row, error) {
	if _, ok := s.findTable(tableID); !ok {
		return nil, ErrTableNotFound
	}
	f, err := s.rows(tableID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return f.All(), nil
}

// ReplaceRows replaces the table's full row set.
func (s *JSONL) ReplaceRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error {
	if _, ok := s.findTable(tableID); !ok {
		return ErrTableNotFound
	}
	f, err := s.rows(tableID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := f.Replace(rows); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// UpsertRows merges a batch by row identifier: replace if present, append
// otherwise.
func (s *JSONL) UpsertRows(ctx context.Context, tableID ksid.ID, batch []grid.Row) error {
	return s.merge(ctx, tableID, batch, true)
}

// PatchRows replaces existing rows by identifier; vanished identifiers
// are logged and dropped.
func (s *JSONL) PatchRows(ctx context.Context, tableID ksid.ID, batch []grid.Row) error {
	return s.merge(ctx, tableID, batch, false)
}

func (s *JSONL) merge(ctx context.Context, tableID ksid.ID, batch []grid.Row, appendMissing bool) error {
	if len(batch) == 0 {
		return nil
	}
	rows, err := s.GetAllRows(ctx, tableID)
	if err != nil {
		return err
	}
	return s.ReplaceRows(ctx, tableID, MergeRows(ctx, rows, batch, appendMissing))
}

// CreateView persists a new view document.
func (s *JSONL) CreateView(ctx context.Context, view *grid.View) error {
	if view.ID.IsZero() {
		view.ID = ksid.NewID()
	}
	if err := view.Validate(); err != nil {
		return err
	}
	if err := s.views.Append(view); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetView loads a view document by id.
func (s *JSONL) GetView(ctx context.Context, viewID ksid.ID) (*grid.View, error) {
	for _, v := range s.views.All() {
		if v.ID == viewID {
			return v, nil
		}
	}
	return nil, ErrViewNotFound
}

// ListViews returns all views saved against a table, oldest first.
func (s *JSONL) ListViews(ctx context.Context, tableID ksid.ID) ([]*grid.View, error) {
	var out []*grid.View
	for _, v := range s.views.All() {
		if v.TableID == tableID {
			out = append(out, v)
		}
	}
	return out, nil
}

// SaveView replaces the whole stored document.
func (s *JSONL) SaveView(ctx context.Context, view *grid.View) error {
	if err := view.Validate(); err != nil {
		return err
	}
	all := s.views.All()
	found := false
	for i, v := range all {
		if v.ID == view.ID {
			all[i] = view.Clone()
			found = true
			break
		}
	}
	if !found {
		return ErrViewNotFound
	}
	if err := s.views.Replace(all); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// DeleteView removes a view document.
func (s *JSONL) DeleteView(ctx context.Context, viewID ksid.ID) error {
	all := s.views.All()
	kept := make([]*grid.View, 0, len(all))
	found := false
	for _, v := range all {
		if v.ID == viewID {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return ErrViewNotFound
	}
	if err := s.views.Replace(kept); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
