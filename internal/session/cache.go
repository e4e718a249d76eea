// Append-only page cache for a grid session.

// Package session holds the client-side machinery of a grid session: the
// view state manager, the paginated row cache, and the edit/save
// coordinator. One session serves one table through one active view.
package session

import (
	"context"
	"sync"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/query"
	"github.com/maruel/ksid"
)

// CacheState describes where the cache is in its lifecycle.
type CacheState string

const (
	// CacheEmpty means no page has been fetched since the last reset.
	CacheEmpty CacheState = "empty"
	// CacheLoading means a fetch is in flight.
	CacheLoading CacheState = "loading"
	// CachePopulated means at least one page has been appended.
	CachePopulated CacheState = "populated"
)

// Cache accumulates pages of a view's row sequence as the user scrolls.
// The visible rows are exactly the concatenation of the pages fetched
// since the last reset, in fetch order. At most one fetch is in flight;
// a reset while a fetch is in flight causes its result to be discarded
// on arrival rather than appended.
type Cache struct {
	exec     query.Executor
	tableID  ksid.ID
	pageSize int

	mu        sync.Mutex
	spec      grid.ViewSpec
	rows      []grid.Row
	gen       uint64
	loading   bool
	exhausted bool
	started   bool
	lastErr   error
}

// NewCache creates an empty cache over the executor for one table, with
// the given view spec and page size.
func NewCache(exec query.Executor, tableID ksid.ID, spec grid.ViewSpec, pageSize int) *Cache {
	return &Cache{exec: exec, tableID: tableID, pageSize: pageSize, spec: spec.Clone()}
}

// LoadMore fetches the next page and appends it. It is a no-op when a
// fetch is already in flight or the sequence is exhausted. A short page
// marks the cache exhausted. A fetch failure is recorded for Err and
// retried by simply calling LoadMore again; already-loaded rows are kept.
func (c *Cache) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || c.exhausted {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	gen := c.gen
	req := query.Request{
		TableID: c.tableID,
		Spec:    c.spec.Clone(),
		Offset:  len(c.rows),
		Limit:   c.pageSize,
	}
	c.mu.Unlock()

	page, err := c.exec.Query(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// Reset or teardown while in flight: ignore the stale page.
		return nil
	}
	c.loading = false
	c.started = true
	if err != nil {
		c.lastErr = err
		return err
	}
	c.lastErr = nil
	c.rows = append(c.rows, page...)
	if len(page) < c.pageSize {
		c.exhausted = true
	}
	return nil
}

// Reset clears the accumulated rows and rebinds the cache to a new view
// spec. It must be called synchronously with any filter/sort change so
// the next LoadMore starts over at offset 0 under the new definition.
func (c *Cache) Reset(spec grid.ViewSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spec = spec.Clone()
	c.rows = nil
	c.gen++
	c.loading = false
	c.exhausted = false
	c.started = false
	c.lastErr = nil
}

// State reports the cache's lifecycle state.
func (c *Cache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.loading:
		return CacheLoading
	case !c.started:
		return CacheEmpty
	default:
		return CachePopulated
	}
}

// Rows returns a copy of the visible row sequence.
func (c *Cache) Rows() []grid.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]grid.Row, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of visible rows.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Exhausted reports whether the full sequence has been fetched.
func (c *Cache) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhausted
}

// Err returns the error from the most recent failed fetch, if the fetch
// after it has not succeeded yet.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// applyEdit updates one field of a cached row in place so the UI reflects
// the edit without a round trip. It returns a copy of the updated row.
func (c *Cache) applyEdit(rowID, field string, value any) (grid.Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if r.ID() == rowID {
			r[field] = value
			return r.Clone(), true
		}
	}
	return nil, false
}
