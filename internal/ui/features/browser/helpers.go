package browser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leapstack-labs/leaptable/pkg/core"
)

// SessionName is the cookie session holding the last view.
const SessionName = "leaptable"

const viewKey = "view"

// savedView is the browser's last table and QuerySpec.
type savedView struct {
	Table string         `json:"table"`
	Spec  core.QuerySpec `json:"spec"`
}

// save stores the controller's current table and spec in the browser
// session.
func (h *Handlers) save(w http.ResponseWriter, r *http.Request) {
	v := h.ctrl.View()
	if v.Schema == nil {
		return
	}
	sess, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		// A cookie signed with another secret decodes to a fresh session.
		h.logger.Debug("discarding browser session", slog.Any("error", err))
	}
	b, err := json.Marshal(savedView{Table: v.Schema.Name, Spec: v.Spec})
	if err != nil {
		return
	}
	sess.Values[viewKey] = string(b)
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to save browser session", slog.Any("error", err))
	}
}

// restore brings the controller back to the view saved in the browser
// session, when it differs from the current one.
func (h *Handlers) restore(ctx context.Context, r *http.Request) {
	sess, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		return
	}
	raw, ok := sess.Values[viewKey].(string)
	if !ok {
		return
	}
	var saved savedView
	if err := json.Unmarshal([]byte(raw), &saved); err != nil || saved.Table == "" {
		return
	}

	v := h.ctrl.View()
	if v.Schema == nil || !strings.EqualFold(v.Schema.Name, saved.Table) {
		if err := h.ctrl.SelectTable(ctx, saved.Table); err != nil {
			h.logger.Debug("saved table not restored", slog.String("table", saved.Table), slog.Any("error", err))
			return
		}
	} else if v.Spec == saved.Spec && v.Results != nil {
		return
	}
	if err := h.ctrl.Search(ctx, saved.Spec); err != nil {
		h.logger.Debug("saved search not restored", slog.Any("error", err))
	}
}
