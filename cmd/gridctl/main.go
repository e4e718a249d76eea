// Package main implements gridctl, a command line client for a local
// gridbase data directory. It opens the row store directly and drives the
// same session components the UI layer uses: the page cache, the view
// editing session, and the deferred cell saver.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/query"
	"github.com/gridbase/gridbase/internal/rowstore"
	"github.com/gridbase/gridbase/internal/session"
	"github.com/lmittmann/tint"
	"github.com/maruel/ksid"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const usage = `usage: gridctl [flags] <command> [args]

commands:
  tables                                  list tables
  views <tableID>                         list views of a table
  page <viewID>                           print view rows page by page
  filter <viewID> <field> <op> <value>    preview a filter; -save persists it
  edit <viewID> <rowID> <field> <value>   edit a cell through the deferred saver

flags:
`

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gridctl: %v\n", err)
		os.Exit(1)
	}
}

type client struct {
	store interface {
		rowstore.Store
		rowstore.ViewStore
	}
	exec     query.Executor
	pageSize int
	pages    int
	save     bool
	debounce time.Duration
}

func mainImpl() error {
	dataDir := flag.String("data-dir", "./data", "Data directory")
	storeKind := flag.String("store", "sqlite", "Row store backend (sqlite, jsonl)")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pageSize := flag.Int("page-size", 50, "Rows per page")
	pages := flag.Int("pages", 0, "Number of pages to fetch (0 = until exhausted)")
	save := flag.Bool("save", false, "Persist the view change (filter command)")
	debounce := flag.Duration("debounce", 500*time.Millisecond, "Deferred save quiescence window (edit command)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	ll := &slog.LevelVar{}
	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:   ll,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &client{pageSize: *pageSize, pages: *pages, save: *save, debounce: *debounce}
	switch *storeKind {
	case "sqlite":
		s, err := rowstore.OpenSQLite(filepath.Join(*dataDir, "grid.db"))
		if err != nil {
			return fmt.Errorf("failed to open row store: %w", err)
		}
		defer func() { _ = s.Close() }()
		c.store = s
		c.exec = query.NewBulk(s)
	case "jsonl":
		s, err := rowstore.OpenJSONL(filepath.Join(*dataDir, "tables"))
		if err != nil {
			return fmt.Errorf("failed to open row store: %w", err)
		}
		c.store = s
		c.exec = query.NewReference(s)
	default:
		return fmt.Errorf("unknown store backend: %q", *storeKind)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "tables":
		return c.listTables(ctx, rest)
	case "views":
		return c.listViews(ctx, rest)
	case "page":
		return c.page(ctx, rest)
	case "filter":
		return c.filter(ctx, rest)
	case "edit":
		return c.edit(ctx, rest)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %q", cmd)
	}
}

func (c *client) listTables(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.New("tables takes no arguments")
	}
	tables, err := c.store.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Printf("%s\t%s\n", t.ID, t.Name)
	}
	return nil
}

func (c *client) listViews(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: views <tableID>")
	}
	tableID, err := ksid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid table id %q: %w", args[0], err)
	}
	views, err := c.store.ListViews(ctx, tableID)
	if err != nil {
		return err
	}
	for _, v := range views {
		fmt.Printf("%s\t%s\t%d filters, %d sorts, %d hidden\n",
			v.ID, v.Name, len(v.Filters), len(v.Sorting), len(v.HiddenFields))
	}
	return nil
}

// openSession loads a view and builds a page cache over it.
func (c *client) openSession(ctx context.Context, rawID string) (*grid.View, *session.Cache, error) {
	viewID, err := ksid.Parse(rawID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid view id %q: %w", rawID, err)
	}
	view, err := c.store.GetView(ctx, viewID)
	if err != nil {
		return nil, nil, err
	}
	return view, session.NewCache(c.exec, view.TableID, view.ViewSpec, c.pageSize), nil
}

// printPages loads pages into the cache and prints each newly fetched row
// as one JSON line, until the view is exhausted or the page budget is
// spent.
func (c *client) printPages(ctx context.Context, cache *session.Cache) error {
	enc := json.NewEncoder(os.Stdout)
	printed := 0
	for n := 0; !cache.Exhausted(); n++ {
		if c.pages > 0 && n >= c.pages {
			break
		}
		if err := cache.LoadMore(ctx); err != nil {
			return err
		}
		rows := cache.Rows()
		for _, row := range rows[printed:] {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		printed = len(rows)
	}
	return nil
}

func (c *client) page(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: page <viewID>")
	}
	_, cache, err := c.openSession(ctx, args[0])
	if err != nil {
		return err
	}
	return c.printPages(ctx, cache)
}

func (c *client) filter(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: filter <viewID> <field> <op> <value>")
	}
	op := grid.Operator(args[2])
	if !grid.KnownOperator(op) {
		return fmt.Errorf("unknown operator: %q", args[2])
	}
	view, cache, err := c.openSession(ctx, args[0])
	if err != nil {
		return err
	}
	mgr := session.NewManager(c.store, cache, view)
	mgr.ReplaceFilters(append(grid.CloneFilters(view.Filters), grid.FilterCondition{
		Field:    args[1],
		Operator: op,
		Value:    args[3],
	}))
	if err := c.printPages(ctx, cache); err != nil {
		return err
	}
	if !c.save {
		return nil
	}
	if err := mgr.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved view %s\n", view.ID)
	return nil
}

func (c *client) edit(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: edit <viewID> <rowID> <field> <value>")
	}
	rowID, field := args[1], args[2]
	view, cache, err := c.openSession(ctx, args[0])
	if err != nil {
		return err
	}
	co := session.NewCoordinator(c.store, view.TableID, cache, c.debounce)

	// Page until the target row is cached; edits apply to cached rows.
	for !cache.Exhausted() {
		if err := cache.LoadMore(ctx); err != nil {
			return err
		}
		if editErr := co.EditCell(rowID, field, parseValue(args[3])); editErr == nil {
			return co.Flush(ctx)
		} else if !errors.Is(editErr, session.ErrRowNotCached) {
			return editErr
		}
	}
	return fmt.Errorf("row %q not visible in view %s", rowID, view.ID)
}

// parseValue interprets the value argument as JSON where possible, so
// numbers, booleans, and null round-trip as themselves. Anything that is
// not valid JSON is a plain string.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
