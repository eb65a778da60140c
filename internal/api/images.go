package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/portal"
	"github.com/erazemk/lostfound/internal/store"
)

// ImagesHandler handles image upload and download.
type ImagesHandler struct {
	DB     *sql.DB
	Images portal.ImageStore

	// MaxUploadBytes caps uploads. Zero means imaging.MaxUploadBytes.
	MaxUploadBytes int64
}

// Upload handles POST /api/images.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = imaging.MaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))

	if err := r.ParseMultipartForm(limit); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	url, err := h.Images.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, imaging.ErrInvalidImage) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to store image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("image uploaded", "user", claims.Username, "url", url)
	jsonResponse(w, http.StatusCreated, map[string]string{"url": url})
}

// Get handles GET /api/images/{id}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
