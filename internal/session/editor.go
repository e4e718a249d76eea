package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/rowstore"
	"github.com/maruel/ksid"
)

// ErrRowNotCached means an edit targeted a row the cache has not loaded.
var ErrRowNotCached = errors.New("row not in cache")

// Coordinator batches cell edits and persists them after a quiet period.
// An edit applies to the cached row immediately; the write to the store
// is debounced so a burst of edits produces one batch. Rows stay dirty
// until a flush that includes their latest edit succeeds, so no edit is
// ever silently lost on failure.
type Coordinator struct {
	store    rowstore.Store
	tableID  ksid.ID
	cache    *Cache
	debounce func(func())

	mu       sync.Mutex
	dirty    map[string]grid.Row
	seq      map[string]uint64
	nextSeq  uint64
	flushing bool
}

// NewCoordinator creates a coordinator persisting edits on tableID after
// the given quiet window.
func NewCoordinator(store rowstore.Store, tableID ksid.ID, cache *Cache, window time.Duration) *Coordinator {
	return &Coordinator{
		store:    store,
		tableID:  tableID,
		cache:    cache,
		debounce: debounce.New(window),
		dirty:    map[string]grid.Row{},
		seq:      map[string]uint64{},
	}
}

// EditCell sets one field of a cached row, marks the row dirty, and
// schedules a debounced flush. The edit is visible in the cache
// immediately.
func (c *Coordinator) EditCell(rowID, field string, value any) error {
	row, ok := c.cache.applyEdit(rowID, field, value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrRowNotCached, rowID)
	}
	c.mu.Lock()
	c.nextSeq++
	c.dirty[rowID] = row
	c.seq[rowID] = c.nextSeq
	c.mu.Unlock()
	c.debounce(c.flushLater)
	return nil
}

func (c *Coordinator) flushLater() {
	if err := c.Flush(context.Background()); err != nil {
		slog.Warn("Deferred save failed, retrying", "table", c.tableID, "err", err)
	}
}

// Flush writes all dirty rows to the store as one batch. At most one
// flush runs at a time. On success only rows not re-edited during the
// flush are cleared; if re-edits left dirty rows behind, or on failure,
// a new debounce cycle is armed.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.flushing || len(c.dirty) == 0 {
		c.mu.Unlock()
		return nil
	}
	c.flushing = true
	batch := make([]grid.Row, 0, len(c.dirty))
	snap := make(map[string]uint64, len(c.seq))
	for id, row := range c.dirty {
		batch = append(batch, row.Clone())
		snap[id] = c.seq[id]
	}
	c.mu.Unlock()

	err := c.store.PatchRows(ctx, c.tableID, batch)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushing = false
	if err != nil {
		c.debounce(c.flushLater)
		return fmt.Errorf("flushing %d rows to table %s: %w", len(batch), c.tableID, err)
	}
	for id, s := range snap {
		if c.seq[id] == s {
			delete(c.dirty, id)
			delete(c.seq, id)
		}
	}
	// A re-edit during the flush may have fired its debounce into the
	// flushing no-op branch. Arm a fresh cycle so those rows still land.
	if len(c.dirty) > 0 {
		c.debounce(c.flushLater)
	}
	return nil
}

// Unsaved reports whether any edit has not been persisted yet.
func (c *Coordinator) Unsaved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dirty) > 0
}

// Pending returns the number of dirty rows.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dirty)
}
