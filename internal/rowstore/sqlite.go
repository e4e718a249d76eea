// SQLite-backed row store. One JSON array blob per table.

package rowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
	_ "modernc.org/sqlite"
)

// SQLite stores tables and views in a single SQLite file. Each table's
// rows are one JSON array-of-objects blob in the tabledata column, which
// is what lets ViewQuery run as a single json_each statement.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)
var _ BulkQuerier = (*SQLite)(nil)
var _ ViewStore = (*SQLite)(nil)

// OpenSQLite opens (or creates) the store at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite supports one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			tabledata TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS views (
			id TEXT PRIMARY KEY,
			tableid TEXT NOT NULL REFERENCES tables(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			filters TEXT NOT NULL DEFAULT '[]',
			sorting TEXT NOT NULL DEFAULT '[]',
			hiddenfields TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS views_tableid ON views(tableid)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec %q: %w", m[:min(40, len(m))], err)
		}
	}
	return nil
}

// unavailable wraps a driver error as a transient store failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// CreateTable creates a table with the given initial rows.
func (s *SQLite) CreateTable(ctx context.Context, name string, rows []grid.Row) (Table, error) {
	t := Table{ID: ksid.NewID(), Name: name}
	blob, err := marshalRows(rows)
	if err != nil {
		return Table{}, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO tables (id, name, tabledata) VALUES (?, ?, ?)`,
		t.ID.String(), t.Name, blob); err != nil {
		return Table{}, unavailable("create table", err)
	}
	return t, nil
}

// GetTable returns table metadata.
func (s *SQLite) GetTable(ctx context.Context, tableID ksid.ID) (Table, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM tables WHERE id = ?`, tableID.String()).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return Table{}, ErrTableNotFound
	}
	if err != nil {
		return Table{}, unavailable("get table", err)
	}
	return Table{ID: tableID, Name: name}, nil
}

// ListTables returns all tables ordered by id (creation order).
func (s *SQLite) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tables ORDER BY id`)
	if err != nil {
		return nil, unavailable("list tables", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var out []Table
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, unavailable("scan table", err)
		}
		kid, err := ksid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt table id %q: %w", id, err)
		}
		out = append(out, Table{ID: kid, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list tables", err)
	}
	return out, nil
}

// DeleteTable removes a table together with its views.
func (s *SQLite) DeleteTable(ctx context.Context, tableID ksid.ID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin delete", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	res, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, tableID.String())
	if err != nil {
		return unavailable("delete table", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM views WHERE tableid = ?`, tableID.String()); err != nil {
		return unavailable("delete views", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit delete", err)
	}
	return nil
}

// GetAllRows returns every row of the table in canonical order.
func (s *SQLite) GetAllRows(ctx context.Context, tableID ksid.ID) ([]grid.Row, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT tabledata FROM tables WHERE id = ?`, tableID.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, unavailable("read rows", err)
	}
	return unmarshalRows(blob)
}

// ReplaceRows replaces the table's full row set.
func (s *SQLite) ReplaceRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error {
	blob, err := marshalRows(rows)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tables SET tabledata = ? WHERE id = ?`, blob, tableID.String())
	if err != nil {
		return unavailable("replace rows", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// UpsertRows merges a batch by row identifier: replace if present, append
// otherwise. The merge runs in one transaction so concurrent reads see
// either the old or the new blob, never a partial write.
func (s *SQLite) UpsertRows(ctx context.Context, tableID ksid.ID, batch []grid.Row) error {
	return s.mergeRows(ctx, tableID, batch, true)
}

// PatchRows replaces existing rows by identifier. Identifiers that no
// longer exist are conflicting writes: logged and dropped, the rest of
// the batch proceeds.
func (s *SQLite) PatchRows(ctx context.Context, tableID ksid.ID, batch []grid.Row) error {
	return s.mergeRows(ctx, tableID, batch, false)
}

func (s *SQLite) mergeRows(ctx context.Context, tableID ksid.ID, batch []grid.Row, appendMissing bool) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin merge", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var blob string
	err = tx.QueryRowContext(ctx, `SELECT tabledata FROM tables WHERE id = ?`, tableID.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTableNotFound
	}
	if err != nil {
		return unavailable("read rows", err)
	}
	rows, err := unmarshalRows(blob)
	if err != nil {
		return err
	}

	merged := MergeRows(ctx, rows, batch, appendMissing)
	newBlob, err := marshalRows(merged)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tables SET tabledata = ? WHERE id = ?`, newBlob, tableID.String()); err != nil {
		return unavailable("write rows", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit merge", err)
	}
	return nil
}

// MergeRows applies a batch to a row set by identifier. Replaced rows keep
// their position; new rows append in batch order when appendMissing is
// set, and are otherwise dropped with a warning.
func MergeRows(ctx context.Context, rows, batch []grid.Row, appendMissing bool) []grid.Row {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[r.ID()] = i
	}
	out := make([]grid.Row, len(rows))
	copy(out, rows)
	for _, b := range batch {
		id := b.ID()
		if i, ok := index[id]; ok {
			out[i] = b.Clone()
			continue
		}
		if appendMissing {
			index[id] = len(out)
			out = append(out, b.Clone())
			continue
		}
		slog.WarnContext(ctx, "Dropping write for missing row", "rowID", id)
	}
	return out
}

// QueryView runs a declarative filter/sort/projection/window query inside
// the store as a single statement.
func (s *SQLite) QueryView(ctx context.Context, tableID ksid.ID, q ViewQuery) ([]grid.Row, error) {
	// The statement yields no rows for a missing table too; distinguish.
	if _, err := s.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	stmt, args, err := buildRowQuery(tableID.String(), q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, unavailable("view query", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	out := []grid.Row{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, unavailable("scan row", err)
		}
		var r grid.Row
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("corrupt row document: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("view query", err)
	}
	return out, nil
}

func marshalRows(rows []grid.Row) (string, error) {
	norm := make([]map[string]any, len(rows))
	for i, r := range rows {
		norm[i] = normalizeRow(r)
	}
	data, err := json.Marshal(norm)
	if err != nil {
		return "", fmt.Errorf("marshal rows: %w", err)
	}
	return string(data), nil
}

// normalizeRow rewrites number values into the canonical tokens
// grid.NumberString defines. SQLite re-renders a stored REAL with its
// own formatting when casting to TEXT, so the blob must hold tokens
// that survive that round trip unchanged or the two executors drift
// apart on exponent-range floats.
func normalizeRow(r grid.Row) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if f, ok := v.(float64); ok {
			if tok := grid.NumberString(f); tok != "" {
				out[k] = json.RawMessage(tok)
			} else {
				out[k] = nil
			}
			continue
		}
		out[k] = v
	}
	return out
}

func unmarshalRows(blob string) ([]grid.Row, error) {
	var rows []grid.Row
	if err := json.Unmarshal([]byte(blob), &rows); err != nil {
		return nil, fmt.Errorf("corrupt table blob: %w", err)
	}
	return rows, nil
}
