package browser

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/internal/ui/notifier"
)

// SetupRoutes registers the browser feature routes.
func SetupRoutes(
	router chi.Router,
	ctrl *session.Controller,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(ctrl, sessionStore, notify, logger)

	router.Get("/", handlers.BrowserPage)

	router.Route("/api", func(r chi.Router) {
		r.Get("/updates", handlers.Updates)
		r.Post("/table", handlers.SelectTable)
		r.Post("/search", handlers.Search)
		r.Post("/refresh", handlers.Refresh)
		r.Post("/insert", handlers.Insert)
		r.Post("/update", handlers.Update)
		r.Post("/delete", handlers.Delete)
	})

	return nil
}
