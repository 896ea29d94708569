// Package ui provides the web renderer for leaptable.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/internal/ui/notifier"
	"github.com/leapstack-labs/leaptable/internal/ui/router"
)

// watchDebounce groups the burst of file events one write produces.
const watchDebounce = 150 * time.Millisecond

// Server is the web UI server.
type Server struct {
	ctrl         *session.Controller
	sessionStore *sessions.CookieStore
	port         int
	watchPath    string
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Controller *session.Controller
	Port       int
	// WatchPath is the database file to watch for external writes. Empty
	// disables watching; only file-based targets set it.
	WatchPath     string
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		ctrl:         cfg.Controller,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watchPath:    cfg.WatchPath,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the router with middleware and all routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.ctrl, s.sessionStore, s.notifier, s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	// Every controller transition refreshes every open page.
	unsubscribe := s.ctrl.Subscribe(notifier.On[session.View](s.notifier))
	defer unsubscribe()

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watchPath != "" {
		eg.Go(func() error {
			return s.watchDatabase(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server", "streams", s.notifier.Count())
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchDatabase refreshes the session when another process writes to the
// database file. The directory is watched so journal and WAL files count.
func (s *Server) watchDatabase(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir, base := filepath.Split(filepath.Clean(s.watchPath))
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		// Keep serving without live refresh.
		s.logger.Error("failed to watch database", "path", s.watchPath, "error", err)
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				s.refresh(ctx, event.Name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// refresh re-runs the current search after an external change. Subscribers
// are notified by the controller.
func (s *Server) refresh(ctx context.Context, file string) {
	switch s.ctrl.State() {
	case session.TableSelected, session.ResultsDisplayed:
	default:
		return
	}
	s.logger.Debug("database changed on disk, refreshing", "file", file)
	if err := s.ctrl.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("refresh after external change failed", "error", err)
	}
}
