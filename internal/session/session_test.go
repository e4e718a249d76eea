package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/query"
	"github.com/gridbase/gridbase/internal/rowstore"
	"github.com/maruel/ksid"
)

// stubExecutor pages over a fixed row slice. Setting block makes Query
// wait until the channel closes, to exercise in-flight behavior.
type stubExecutor struct {
	mu    sync.Mutex
	rows  []grid.Row
	err   error
	block chan struct{}
	calls []query.Request
}

func (s *stubExecutor) Query(ctx context.Context, req query.Request) ([]grid.Row, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	block := s.block
	err := s.err
	rows := s.rows
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if req.Offset >= len(rows) {
		return []grid.Row{}, nil
	}
	end := min(req.Offset+req.Limit, len(rows))
	out := make([]grid.Row, 0, end-req.Offset)
	for _, r := range rows[req.Offset:end] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *stubExecutor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// stubStore records PatchRows batches. Setting block makes PatchRows wait
// until the channel closes; err fails the call.
type stubStore struct {
	mu      sync.Mutex
	patches [][]grid.Row
	err     error
	block   chan struct{}
	calls   int
}

func (s *stubStore) PatchRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error {
	s.mu.Lock()
	s.calls++
	block := s.block
	err := s.err
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]grid.Row, len(rows))
	for i, r := range rows {
		batch[i] = r.Clone()
	}
	s.patches = append(s.patches, batch)
	return nil
}

func (s *stubStore) batches() [][]grid.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]grid.Row(nil), s.patches...)
}

func (s *stubStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubStore) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubStore) CreateTable(ctx context.Context, name string, rows []grid.Row) (rowstore.Table, error) {
	return rowstore.Table{}, rowstore.ErrUnavailable
}

func (s *stubStore) GetTable(ctx context.Context, tableID ksid.ID) (rowstore.Table, error) {
	return rowstore.Table{}, rowstore.ErrTableNotFound
}

func (s *stubStore) ListTables(ctx context.Context) ([]rowstore.Table, error) { return nil, nil }

func (s *stubStore) DeleteTable(ctx context.Context, tableID ksid.ID) error { return nil }

func (s *stubStore) GetAllRows(ctx context.Context, tableID ksid.ID) ([]grid.Row, error) {
	return nil, nil
}

func (s *stubStore) ReplaceRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error {
	return nil
}

func (s *stubStore) UpsertRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error {
	return nil
}

// stubViewStore records saves and can fail them.
type stubViewStore struct {
	mu      sync.Mutex
	saved   []*grid.View
	saveErr error
}

func (s *stubViewStore) SaveView(ctx context.Context, view *grid.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, view.Clone())
	return nil
}

func (s *stubViewStore) CreateView(ctx context.Context, view *grid.View) error { return nil }

func (s *stubViewStore) GetView(ctx context.Context, viewID ksid.ID) (*grid.View, error) {
	return nil, rowstore.ErrViewNotFound
}

func (s *stubViewStore) ListViews(ctx context.Context, tableID ksid.ID) ([]*grid.View, error) {
	return nil, nil
}

func (s *stubViewStore) DeleteView(ctx context.Context, viewID ksid.ID) error { return nil }

// waitFor polls cond until true or the test deadline approaches.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never met")
}

func numberedRows(n int) []grid.Row {
	rows := make([]grid.Row, n)
	for i := range rows {
		rows[i] = grid.Row{"id": string(rune('a' + i)), "n": float64(i)}
	}
	return rows
}
