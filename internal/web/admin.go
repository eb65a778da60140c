package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/lostfound/internal/listing"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AdminPage handles GET /admin.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var loadErr string
	items, err := store.ListItems(ctx, s.DB)
	if err != nil {
		slog.Error("failed to list items for admin panel", "error", err)
		loadErr = errLoadItems
	}
	matches, err := store.ListMatches(ctx, s.DB, "")
	if err != nil {
		slog.Error("failed to list matches for admin panel", "error", err)
		loadErr = errLoadItems
	}

	q := r.URL.Query()
	filter := listing.Filter{Type: q.Get("type"), Query: q.Get("q")}
	if filter.Type == "" {
		filter.Type = listing.TypeAll
	}

	pd := page(r, "Admin")
	switch q.Get("done") {
	case "verify":
		pd.Success = "Item verified."
	case "retrieved":
		pd.Success = "Item marked as retrieved."
	case "delete":
		pd.Success = "Item deleted."
	}

	status := http.StatusOK
	if loadErr != "" {
		pd.Error = loadErr
		pd.Success = ""
		status = http.StatusInternalServerError
	}

	s.Templates.RenderStatus(w, status, "admin.html", &struct {
		PageData
		Metrics model.Metrics
		Filter  listing.Filter
		Items   []model.Item
		Matches []model.Match
	}{
		PageData: pd,
		Metrics:  matching.ComputeMetrics(items),
		Filter:   filter,
		Items:    listing.SortNewestFirst(filter.Apply(items)),
		Matches:  matches,
	})
}

// AdminVerify handles POST /admin/items/{id}/verify.
func (s *Server) AdminVerify(w http.ResponseWriter, r *http.Request) {
	s.adminAction(w, r, "verify", func(it *model.Item, by int64) error {
		_, err := store.CreateVerification(r.Context(), s.DB, it.ID, &by)
		return err
	})
}

// AdminRetrieved handles POST /admin/items/{id}/retrieved.
func (s *Server) AdminRetrieved(w http.ResponseWriter, r *http.Request) {
	s.adminAction(w, r, "retrieved", func(it *model.Item, by int64) error {
		_, err := store.CreateRetrieval(r.Context(), s.DB, it.ID, &by)
		return err
	})
}

// AdminDelete handles POST /admin/items/{id}/delete.
func (s *Server) AdminDelete(w http.ResponseWriter, r *http.Request) {
	s.adminAction(w, r, "delete", func(it *model.Item, _ int64) error {
		return store.DeleteItem(r.Context(), s.DB, it.ID)
	})
}

// adminAction runs fn against the item in the path and returns to the
// admin panel, keeping the search the action was taken from.
func (s *Server) adminAction(w http.ResponseWriter, r *http.Request, action string, fn func(*model.Item, int64) error) {
	claims := GetWebClaims(r.Context())

	item, err := store.GetItem(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	if err := fn(item, claims.UserID); err != nil {
		slog.Error("admin action failed", "action", action, "item", item.ID, "error", err)
		http.Error(w, "action failed", http.StatusInternalServerError)
		return
	}
	slog.Info("admin action", "action", action, "user", claims.Username, "item", item.ID, "name", item.Name)

	v := url.Values{"done": {action}}
	if q := strings.TrimSpace(r.FormValue("q")); q != "" {
		v.Set("q", q)
	}
	http.Redirect(w, r, "/admin?"+v.Encode(), http.StatusSeeOther)
}
