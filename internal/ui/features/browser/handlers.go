package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/internal/ui/notifier"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// Handlers provides HTTP handlers for the browser feature.
type Handlers struct {
	ctrl         *session.Controller
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctrl *session.Controller, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		ctrl:         ctrl,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
	}
}

func (h *Handlers) appData(err error) AppData {
	v := h.ctrl.View()
	return AppData{View: v, Fields: session.Form(v.Schema), Err: err}
}

// BrowserPage renders the full page, restoring the view saved in the
// browser session first.
func (h *Handlers) BrowserPage(w http.ResponseWriter, r *http.Request) {
	h.restore(r.Context(), r)

	if err := BrowserPage(h.appData(nil)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Updates is the long-lived SSE endpoint. It patches the app container on
// every notifier ping and sends nothing initially.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(App(h.appData(nil))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// respond patches the app container, reporting err in the banner and the
// browser console.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, err error) {
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.logger.Debug("browser action failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		_ = sse.ConsoleError(err)
	}
	if perr := sse.PatchElementTempl(App(h.appData(err))); perr != nil {
		_ = sse.ConsoleError(perr)
	}
}

// action reads the signals, runs fn and responds. The browser session is
// saved before the SSE response starts so the cookie can still be set.
func (h *Handlers) action(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sig Signals) error) {
	var sig Signals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		h.respond(w, r, fmt.Errorf("failed to read signals: %w", err))
		return
	}

	err := fn(r.Context(), sig)
	if err == nil {
		h.save(w, r)
	}
	h.respond(w, r, err)
}

// SelectTable switches to the chosen table and loads its first page.
func (h *Handlers) SelectTable(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, sig Signals) error {
		if sig.Table == "" {
			return nil
		}
		if err := h.ctrl.SelectTable(ctx, sig.Table); err != nil {
			return err
		}
		return h.ctrl.Search(ctx, session.DefaultSpec(h.ctrl.View().Schema))
	})
}

// Search runs the filter, sort, limit and page from the signals.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, sig Signals) error {
		spec, err := sig.Spec()
		if err != nil {
			return err
		}
		return h.ctrl.Search(ctx, spec)
	})
}

// Refresh re-runs the current search.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, _ Signals) error {
		return h.ctrl.Refresh(ctx)
	})
}

// Mutations carry the table the page showed. The controller rejects them
// with a StateError when another tab has since selected a different table.

// Insert adds a row from the add form.
func (h *Handlers) Insert(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, sig Signals) error {
		if sig.Table == "" {
			return core.NewStateError("insert", "choose a table first")
		}
		values := sig.FormInput(session.Form(h.ctrl.View().Schema))
		_, err := h.ctrl.InsertRowIn(ctx, sig.Table, values)
		return err
	})
}

// Update writes the edit value, or NULL when the null query parameter is
// set, into the selected cell. The row is matched on the key the page
// showed.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	setNull := r.URL.Query().Get("null") != ""
	h.action(w, r, func(ctx context.Context, sig Signals) error {
		if sig.Table == "" || len(sig.Key) == 0 {
			return core.NewStateError("update", "select a cell first")
		}
		schema := h.ctrl.View().Schema
		if !schema.Matches(sig.Table) {
			return core.NewStateError("update", fmt.Sprintf("table %s is not selected", sig.Table))
		}
		column := sig.Column(schema)
		if column == "" {
			return core.NewStateError("update", "select a cell first")
		}
		var value any = sig.EditValue
		if setNull {
			value = nil
		}
		_, err := h.ctrl.UpdateByKeyIn(ctx, sig.Table, sig.Key, column, value)
		return err
	})
}

// Delete removes the selected row by the key the page showed. The browser
// asks for confirmation.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, sig Signals) error {
		if sig.Table == "" || len(sig.Key) == 0 {
			return core.NewStateError("delete", "select a row first")
		}
		_, err := h.ctrl.DeleteByKeyIn(ctx, sig.Table, sig.Key)
		return err
	})
}
