// Package main is the entry point for the gridbase server.
//
// gridbase stores tables of schemaless JSON rows and the saved views
// defined over them, and exposes a RESTful HTTP API for querying windows
// of view results. Configuration is read from CLI flags and an optional
// config.yaml in the data directory; the config file is watched and the
// log level and rate limits are reloaded on change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gridbase/gridbase/internal/query"
	"github.com/gridbase/gridbase/internal/rowstore"
	"github.com/gridbase/gridbase/internal/server"
	"github.com/gridbase/gridbase/internal/server/handlers"
	"github.com/gridbase/gridbase/internal/server/ipgeo"
	"github.com/gridbase/gridbase/internal/server/ratelimit"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gridbase: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080, 0.0.0.0:8080). Use 0.0.0.0:port to listen on all interfaces.")
	dataDir := flag.String("data-dir", "./data", "Data directory")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	configPath := flag.String("config", "", "Path to config.yaml (default: <data-dir>/config.yaml if present)")
	storeKind := flag.String("store", "sqlite", "Row store backend (sqlite, jsonl)")
	executorKind := flag.String("executor", "", "Query executor (bulk, reference; default: bulk for sqlite, reference for jsonl)")
	geoDB := flag.String("geo-db", "", "Path to MaxMind MMDB file for IP geolocation (optional)")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Drop time when running under systemd.
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			// Drop localhost IPs (not useful in logs).
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			val := a.Value.Any()
			skip := false
			switch t := val.(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case uint64:
				skip = t == 0
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(*dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// Load config.yaml. Values apply only where the matching flag was not
	// explicitly set.
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(*dataDir, "config.yaml")
	}
	fileCfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if !set["http"] && fileCfg.HTTP != "" {
		*httpAddr = fileCfg.HTTP
	}
	if !set["log-level"] && fileCfg.LogLevel != "" {
		*logLevel = fileCfg.LogLevel
	}
	if !set["store"] && fileCfg.Store != "" {
		*storeKind = fileCfg.Store
	}
	if !set["executor"] && fileCfg.Executor != "" {
		*executorKind = fileCfg.Executor
	}
	if !set["geo-db"] && fileCfg.GeoDB != "" {
		*geoDB = fileCfg.GeoDB
	}

	if err := setLogLevel(ll, *logLevel); err != nil {
		return err
	}

	// Normalize addr: ":8080" becomes "localhost:8080"
	addr := *httpAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	var store interface {
		rowstore.Store
		rowstore.ViewStore
	}
	var bulk rowstore.BulkQuerier
	switch *storeKind {
	case "sqlite":
		s, err := rowstore.OpenSQLite(filepath.Join(*dataDir, "grid.db"))
		if err != nil {
			return fmt.Errorf("failed to open row store: %w", err)
		}
		defer func() { _ = s.Close() }()
		store = s
		bulk = s
	case "jsonl":
		s, err := rowstore.OpenJSONL(filepath.Join(*dataDir, "tables"))
		if err != nil {
			return fmt.Errorf("failed to open row store: %w", err)
		}
		store = s
	default:
		return fmt.Errorf("unknown store backend: %q", *storeKind)
	}

	var exec query.Executor
	switch *executorKind {
	case "bulk":
		if bulk == nil {
			return fmt.Errorf("the %s store does not support the bulk executor", *storeKind)
		}
		exec = query.NewBulk(bulk)
	case "reference":
		exec = query.NewReference(store)
	case "":
		if bulk != nil {
			exec = query.NewBulk(bulk)
		} else {
			exec = query.NewReference(store)
		}
	default:
		return fmt.Errorf("unknown executor: %q", *executorKind)
	}

	// Open IP geolocation database if configured
	var geoChecker *ipgeo.Checker
	if *geoDB != "" {
		geoChecker, err = ipgeo.Open(*geoDB)
		if err != nil {
			return fmt.Errorf("failed to open geo database: %w", err)
		}
		defer func() { _ = geoChecker.Close() }()
		slog.InfoContext(ctx, "IP geolocation enabled", "db", *geoDB)
	}

	limits := ratelimit.DefaultConfig()
	defer limits.Stop()
	applyRateLimits(limits, fileCfg)

	// Watch config.yaml so the log level and rate limits can change
	// without a restart.
	if err := watchConfig(ctx, cfgPath, ll, limits); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	svc := &handlers.Services{
		Store:    store,
		Views:    store,
		Executor: exec,
	}
	cfg := &handlers.Config{
		Version:             buildVersion,
		PageSize:            fileCfg.PageSize,
		MaxRequestBodyBytes: fileCfg.MaxBodyBytes,
	}
	opts := &server.Options{
		Limits:       limits,
		MaxBodyBytes: fileCfg.MaxBodyBytes,
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc, cfg, opts, geoChecker),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", addr, "store", *storeKind, "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	// Wait for either context cancellation or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		// Graceful shutdown
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// fileConfig is the shape of config.yaml. All fields are optional.
type fileConfig struct {
	HTTP         string `yaml:"http"`
	LogLevel     string `yaml:"log_level"`
	Store        string `yaml:"store"`
	Executor     string `yaml:"executor"`
	GeoDB        string `yaml:"geo_db"`
	PageSize     int    `yaml:"page_size"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	RateLimits   struct {
		WritePerMinute int `yaml:"write_per_minute"`
		WriteBurst     int `yaml:"write_burst"`
		ReadPerMinute  int `yaml:"read_per_minute"`
		ReadBurst      int `yaml:"read_burst"`
	} `yaml:"rate_limits"`
}

// loadConfig reads config.yaml. A missing file is not an error; it yields
// the zero config.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from flags, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func setLogLevel(ll *slog.LevelVar, level string) error {
	switch level {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", level)
	}
	return nil
}

func applyRateLimits(limits *ratelimit.Config, cfg fileConfig) {
	rl := cfg.RateLimits
	if rl.WritePerMinute > 0 && rl.WriteBurst > 0 {
		limits.Write.Limiter.SetRate(rl.WritePerMinute, rl.WriteBurst)
	}
	if rl.ReadPerMinute > 0 && rl.ReadBurst > 0 {
		limits.Read.Limiter.SetRate(rl.ReadPerMinute, rl.ReadBurst)
	}
}

// watchConfig watches the config file and reloads the log level and rate
// limits on changes. Other settings require a restart.
func watchConfig(ctx context.Context, path string, ll *slog.LevelVar, limits *ratelimit.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace the file, which drops a watch
	// on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}
	base := filepath.Base(path)
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Chmod) {
					continue
				}
				cfg, err := loadConfig(path)
				if err != nil {
					slog.WarnContext(ctx, "Failed to reload config", "err", err)
					continue
				}
				if cfg.LogLevel != "" {
					if err := setLogLevel(ll, cfg.LogLevel); err != nil {
						slog.WarnContext(ctx, "Failed to reload config", "err", err)
					} else {
						slog.InfoContext(ctx, "Log level updated", "level", cfg.LogLevel)
					}
				}
				applyRateLimits(limits, cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching config", "err", err)
			}
		}
	}()
	return nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("gridbase %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
