// Package engine hosts the engine HTTP process: it opens the sqlite store,
// assembles the service and API handler, and runs the server until the
// context ends.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/roundtable/internal/platform/timeouts"
	"github.com/louisbranch/roundtable/internal/services/engine/api"
	"github.com/louisbranch/roundtable/internal/services/engine/app"
	"github.com/louisbranch/roundtable/internal/services/engine/storage/sqlite"
)

// Config defines the inputs for the engine process.
type Config struct {
	HTTPAddr string
	// DatabaseURL locates the sqlite file. Accepts sqlite:// URLs and bare
	// paths; empty falls back to data/engine.db.
	DatabaseURL         string
	EngineKey           string
	AIOnlyStreakLimit   int
	DMOmniscientPrivate bool
	ReadHeaderTimeout   time.Duration
	ShutdownTimeout     time.Duration
}

// Server hosts the engine HTTP API over a sqlite store.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           *sqlite.Store
}

// NewServer opens the store and builds a configured engine server.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if strings.TrimSpace(cfg.EngineKey) == "" {
		return nil, errors.New("engine key is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}

	store, err := openStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open engine store: %w", err)
	}

	svc := app.NewService(store, app.Config{
		AIOnlyStreakLimit:   cfg.AIOnlyStreakLimit,
		DMOmniscientPrivate: cfg.DMOmniscientPrivate,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           api.NewHandler(svc, cfg.EngineKey),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		httpServer:      httpServer,
		store:           store,
	}, nil
}

// Run creates and serves an engine server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("init engine server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve engine: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("engine server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("engine server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close engine store: %v", err)
		}
	}
}

// openStore resolves the database URL to a file path, creates the parent
// directory, and opens the sqlite store.
func openStore(databaseURL string) (*sqlite.Store, error) {
	path := storePath(databaseURL)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return sqlite.Open(path)
}

// storePath strips the sqlite URL scheme variants down to a file path.
// Empty input falls back to data/engine.db.
func storePath(databaseURL string) string {
	path := strings.TrimSpace(databaseURL)
	for _, prefix := range []string{"sqlite:///", "sqlite://", "sqlite:"} {
		if strings.HasPrefix(path, prefix) {
			path = strings.TrimPrefix(path, prefix)
			break
		}
	}
	path = strings.TrimPrefix(path, "./")
	if path == "" {
		path = filepath.Join("data", "engine.db")
	}
	return path
}
