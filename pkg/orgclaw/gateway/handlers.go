package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Warn("response encode failed", "error", err)
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, status int, msg string) {
	g.writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth is the liveness probe. When HEALTH_CHECK_TOKEN is configured
// the caller must present it as X-Health-Token.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if g.cfg.HealthToken != "" && !compareTokens(r.Header.Get("X-Health-Token"), g.cfg.HealthToken) {
		g.writeError(w, http.StatusUnauthorized, "invalid health token")
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(g.startedAt).Round(time.Second).String(),
	})
}

func (g *Gateway) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := g.store.Users.All(r.Context())
	if err != nil {
		g.logger.Error("listing users", "error", err)
		g.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"count": len(users),
		"users": users,
	})
}

// handleUserLists returns the user's lists with their open items inlined.
func (g *Gateway) handleUserLists(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	lists, err := g.store.Lists.ByUser(r.Context(), userID)
	if err != nil {
		g.logger.Error("listing lists", "user", userID, "error", err)
		g.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	type listView struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Items []any  `json:"items"`
	}
	out := make([]listView, 0, len(lists))
	for _, l := range lists {
		items, err := g.store.Lists.Items(r.Context(), l.ID, true)
		if err != nil {
			g.logger.Error("listing items", "list", l.ID, "error", err)
			g.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		view := listView{ID: l.ID, Name: l.Name, Items: make([]any, 0, len(items))}
		for _, it := range items {
			view.Items = append(view.Items, it)
		}
		out = append(out, view)
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"lists":   out,
	})
}

func (g *Gateway) handleUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	events, err := g.store.Events.ByUser(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		g.logger.Error("listing events", "user", userID, "error", err)
		g.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"events":  events,
	})
}

func (g *Gateway) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 1000 {
			g.writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	entries, err := g.store.Audit.Recent(r.Context(), limit)
	if err != nil {
		g.logger.Error("listing audit entries", "error", err)
		g.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

// handleStatus is the operational snapshot: scheduler load, queue depths,
// breaker state and per-channel health.
func (g *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobs := g.sched.ListJobs(true)
	enabled := 0
	for _, j := range jobs {
		if j.Enabled {
			enabled++
		}
	}
	userCount, err := g.store.Users.Count(r.Context())
	if err != nil {
		g.logger.Error("counting users", "error", err)
		g.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := map[string]any{
		"uptime": time.Since(g.startedAt).Round(time.Second).String(),
		"users":  userCount,
		"scheduler": map[string]any{
			"jobs":    len(jobs),
			"enabled": enabled,
		},
		"bus": map[string]any{
			"inbound_depth":  g.bus.InboundLen(),
			"outbound_depth": g.bus.OutboundLen(),
		},
	}
	if g.breaker != nil {
		status["breaker"] = g.breaker.State()
	}
	if g.chans != nil {
		status["channels"] = g.chans.HealthAll()
	}
	g.writeJSON(w, http.StatusOK, status)
}
