// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leaptable/internal/session"
	browserFeature "github.com/leapstack-labs/leaptable/internal/ui/features/browser"
	"github.com/leapstack-labs/leaptable/internal/ui/notifier"
	"github.com/leapstack-labs/leaptable/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	ctrl *session.Controller,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
) error {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	return browserFeature.SetupRoutes(router, ctrl, sessionStore, notify, logger)
}
