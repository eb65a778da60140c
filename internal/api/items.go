package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/listing"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/portal"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsHandler handles item search, submission and moderation endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Portal *portal.Service

	// MaxUploadBytes caps multipart submissions. Zero means imaging.MaxUploadBytes.
	MaxUploadBytes int64
}

type createItemRequest struct {
	Type string `json:"type"`
	portal.NewItem
}

type createItemResponse struct {
	Result string `json:"result"`
	*portal.Outcome
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := listing.Filter{
		Type:          q.Get("type"),
		Query:         q.Get("q"),
		SearchContact: true,
	}
	if filter.Type != "" && filter.Type != listing.TypeAll && !model.ValidType(filter.Type) {
		jsonError(w, http.StatusBadRequest, "type must be all, lost or found")
		return
	}
	if v := q.Get("with_image"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid with_image value")
			return
		}
		filter.WithImage = b
	}

	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	jsonResponse(w, http.StatusOK, listing.SortNewestFirst(filter.Apply(items)))
}

// Create handles POST /api/items. The body is either JSON or a multipart
// form with an optional "image" file.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	var upload *portal.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		limit := h.MaxUploadBytes
		if limit <= 0 {
			limit = imaging.MaxUploadBytes
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
		if err := r.ParseMultipartForm(limit); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}
		req = createItemRequest{
			Type: r.FormValue("type"),
			NewItem: portal.NewItem{
				Name:        r.FormValue("name"),
				Description: r.FormValue("description"),
				Contact:     r.FormValue("contact"),
				Email:       r.FormValue("email"),
				Location:    r.FormValue("location"),
				Date:        r.FormValue("date"),
			},
		}

		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			upload = &portal.Upload{Name: header.Filename, Data: file}
		case errors.Is(err, http.ErrMissingFile):
		default:
			jsonError(w, http.StatusBadRequest, "invalid image field")
			return
		}
	} else if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.submit(r, req, upload)

	var partial *portal.PartialMatchError
	switch {
	case errors.As(err, &partial):
		jsonResponse(w, http.StatusOK, createItemResponse{Result: out.Result(), Outcome: out})
		return
	case errors.Is(err, portal.ErrInvalidItem):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("failed to save item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save item")
		return
	}

	jsonResponse(w, http.StatusCreated, createItemResponse{Result: out.Result(), Outcome: out})
}

func (h *ItemsHandler) submit(r *http.Request, req createItemRequest, up *portal.Upload) (*portal.Outcome, error) {
	switch req.Type {
	case model.TypeLost:
		return h.Portal.SubmitLost(r.Context(), req.NewItem, up)
	case model.TypeFound:
		return h.Portal.SubmitFound(r.Context(), req.NewItem, up)
	default:
		return nil, errInvalidType
	}
}

var errInvalidType = fmt.Errorf("%w: type must be lost or found", portal.ErrInvalidItem)

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	item, err := store.GetItem(ctx, h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	verifications, err := store.ListVerifications(ctx, h.DB, id)
	if err != nil {
		slog.Error("failed to list verifications", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	retrievals, err := store.ListRetrievals(ctx, h.DB, id)
	if err != nil {
		slog.Error("failed to list retrievals", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	matches, err := store.ListMatches(ctx, h.DB, id)
	if err != nil {
		slog.Error("failed to list matches", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	if verifications == nil {
		verifications = []model.Verification{}
	}
	if retrievals == nil {
		retrievals = []model.Retrieval{}
	}
	if matches == nil {
		matches = []model.Match{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":          item,
		"verifications": verifications,
		"retrievals":    retrievals,
		"matches":       matches,
	})
}

// Verify handles POST /api/items/{id}/verify.
func (h *ItemsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookup(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	v, err := store.CreateVerification(r.Context(), h.DB, item.ID, &claims.UserID)
	if err != nil {
		slog.Error("failed to verify item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to verify item")
		return
	}

	slog.Info("item verified", "user", claims.Username, "item", item.ID, "name", item.Name)
	jsonResponse(w, http.StatusCreated, v)
}

// Retrieved handles POST /api/items/{id}/retrieved.
func (h *ItemsHandler) Retrieved(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookup(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	rec, err := store.CreateRetrieval(r.Context(), h.DB, item.ID, &claims.UserID)
	if err != nil {
		slog.Error("failed to mark item retrieved", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark item retrieved")
		return
	}

	slog.Info("item retrieved", "user", claims.Username, "item", item.ID, "name", item.Name)
	jsonResponse(w, http.StatusCreated, rec)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("item deleted", "user", claims.Username, "item", item.ID, "name", item.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// lookup loads the item named by the path, writing a 404 if it is missing.
func (h *ItemsHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}
