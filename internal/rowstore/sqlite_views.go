// View document persistence for the SQLite store.

package rowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
)

// CreateView persists a new view document. The view is validated first;
// an invalid view is never written.
func (s *SQLite) CreateView(ctx context.Context, view *grid.View) error {
	if view.ID.IsZero() {
		view.ID = ksid.NewID()
	}
	if err := view.Validate(); err != nil {
		return err
	}
	filters, sorting, hidden, err := marshalSpec(view.ViewSpec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO views (id, tableid, name, filters, sorting, hiddenfields) VALUES (?, ?, ?, ?, ?, ?)`,
		view.ID.String(), view.TableID.String(), view.Name, filters, sorting, hidden)
	if err != nil {
		return unavailable("create view", err)
	}
	return nil
}

// GetView loads a view document by id.
func (s *SQLite) GetView(ctx context.Context, viewID ksid.ID) (*grid.View, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tableid, name, filters, sorting, hiddenfields FROM views WHERE id = ?`, viewID.String())
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrViewNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListViews returns all views saved against a table, oldest first.
func (s *SQLite) ListViews(ctx context.Context, tableID ksid.ID) ([]*grid.View, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tableid, name, filters, sorting, hiddenfields FROM views WHERE tableid = ? ORDER BY id`, tableID.String())
	if err != nil {
		return nil, unavailable("list views", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var out []*grid.View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list views", err)
	}
	return out, nil
}

// SaveView replaces the whole stored document: name and the complete
// filters/sorting/hiddenFields triple. Partial updates are not supported.
func (s *SQLite) SaveView(ctx context.Context, view *grid.View) error {
	if err := view.Validate(); err != nil {
		return err
	}
	filters, sorting, hidden, err := marshalSpec(view.ViewSpec)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE views SET name = ?, filters = ?, sorting = ?, hiddenfields = ? WHERE id = ?`,
		view.Name, filters, sorting, hidden, view.ID.String())
	if err != nil {
		return unavailable("save view", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrViewNotFound
	}
	return nil
}

// DeleteView removes a view document.
func (s *SQLite) DeleteView(ctx context.Context, viewID ksid.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, viewID.String())
	if err != nil {
		return unavailable("delete view", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrViewNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanView(r rowScanner) (*grid.View, error) {
	var id, tableID, name, filters, sorting, hidden string
	if err := r.Scan(&id, &tableID, &name, &filters, &sorting, &hidden); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, unavailable("scan view", err)
	}
	vid, err := ksid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt view id %q: %w", id, err)
	}
	tid, err := ksid.Parse(tableID)
	if err != nil {
		return nil, fmt.Errorf("corrupt table id %q: %w", tableID, err)
	}
	v := &grid.View{ID: vid, TableID: tid, Name: name}
	if err := json.Unmarshal([]byte(filters), &v.Filters); err != nil {
		return nil, fmt.Errorf("corrupt filters document: %w", err)
	}
	if err := json.Unmarshal([]byte(sorting), &v.Sorting); err != nil {
		return nil, fmt.Errorf("corrupt sorting document: %w", err)
	}
	if err := json.Unmarshal([]byte(hidden), &v.HiddenFields); err != nil {
		return nil, fmt.Errorf("corrupt hiddenFields document: %w", err)
	}
	return v, nil
}

func marshalSpec(s grid.ViewSpec) (filters, sorting, hidden string, err error) {
	f := s.Filters
	if f == nil {
		f = []grid.FilterCondition{}
	}
	fb, err := json.Marshal(f)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal filters: %w", err)
	}
	so := s.Sorting
	if so == nil {
		so = []grid.SortCriterion{}
	}
	sb, err := json.Marshal(so)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal sorting: %w", err)
	}
	h := s.HiddenFields
	if h == nil {
		h = []string{}
	}
	hb, err := json.Marshal(h)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal hiddenFields: %w", err)
	}
	return string(fb), string(sb), string(hb), nil
}
