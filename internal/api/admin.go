package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AdminHandler serves the admin panel data.
type AdminHandler struct {
	DB *sql.DB
}

// Metrics handles GET /api/metrics.
func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}
	jsonResponse(w, http.StatusOK, matching.ComputeMetrics(items))
}

// Matches handles GET /api/matches.
func (h *AdminHandler) Matches(w http.ResponseWriter, r *http.Request) {
	matches, err := store.ListMatches(r.Context(), h.DB, "")
	if err != nil {
		slog.Error("failed to list matches", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}
