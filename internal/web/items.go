package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/listing"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/portal"
	"github.com/erazemk/lostfound/internal/store"
)

// recentLimit is the number of posts shown on the home page.
const recentLimit = 6

const errLoadItems = "Items could not be loaded. Try again later."

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	pd := page(r, "Lost & Found")
	status := http.StatusOK

	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items for home page", "error", err)
		pd.Error = errLoadItems
		status = http.StatusInternalServerError
	}

	recent := listing.SortNewestFirst(items)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	s.Templates.RenderStatus(w, status, "home.html", &struct {
		PageData
		Recent []model.Item
	}{
		PageData: pd,
		Recent:   recent,
	})
}

type itemFormData struct {
	PageData
	Type string
	Form portal.NewItem
}

// LostForm handles GET /lost/new.
func (s *Server) LostForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, model.TypeLost, portal.NewItem{}, "")
}

// FoundForm handles GET /found/new.
func (s *Server) FoundForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, model.TypeFound, portal.NewItem{}, "")
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, typ string, form portal.NewItem, errMsg string) {
	title := "Report a lost item"
	if typ == model.TypeFound {
		title = "Report a found item"
	}
	pd := page(r, title)
	pd.Error = errMsg
	s.Templates.RenderStatus(w, status, "item_form.html", &itemFormData{PageData: pd, Type: typ, Form: form})
}

// LostSubmit handles POST /lost.
func (s *Server) LostSubmit(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, model.TypeLost)
}

// FoundSubmit handles POST /found.
func (s *Server) FoundSubmit(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, model.TypeFound)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, typ string) {
	claims := GetWebClaims(r.Context())

	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = imaging.MaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(limit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.renderForm(w, r, http.StatusBadRequest, typ, portal.NewItem{}, "The upload is too large or malformed.")
		return
	}

	form := portal.NewItem{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Contact:     r.FormValue("contact"),
		Email:       r.FormValue("email"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
	}

	var upload *portal.Upload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > 0 {
			upload = &portal.Upload{Name: header.Filename, Data: file}
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		s.renderForm(w, r, http.StatusBadRequest, typ, form, "The image could not be read.")
		return
	}

	var out *portal.Outcome
	if typ == model.TypeLost {
		out, err = s.Portal.SubmitLost(r.Context(), form, upload)
	} else {
		out, err = s.Portal.SubmitFound(r.Context(), form, upload)
	}

	var partial *portal.PartialMatchError
	switch {
	case errors.As(err, &partial):
		slog.Warn("item saved with failed matches", "user", claims.Username, "item", partial.FoundID, "failed", len(partial.Failed))
	case errors.Is(err, portal.ErrInvalidItem):
		s.renderForm(w, r, http.StatusBadRequest, typ, form, "Please fill in the name, description and contact, and use a JPEG, PNG or WebP photo.")
		return
	case err != nil:
		slog.Error("failed to save item", "error", err)
		s.renderForm(w, r, http.StatusInternalServerError, typ, form, "The item could not be saved. Please try again.")
		return
	default:
		slog.Info("item posted", "user", claims.Username, "item", out.Item.ID, "type", typ)
	}

	http.Redirect(w, r, "/items/"+url.PathEscape(out.Item.ID)+"?result="+out.Result(), http.StatusSeeOther)
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := listing.Filter{
		Type:          q.Get("type"),
		Query:         q.Get("q"),
		WithImage:     q.Get("with_image") != "",
		SearchContact: true,
	}
	if filter.Type == "" {
		filter.Type = listing.TypeAll
	}

	pd := page(r, "Search items")
	status := http.StatusOK

	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		pd.Error = errLoadItems
		status = http.StatusInternalServerError
	}

	s.Templates.RenderStatus(w, status, "items.html", &struct {
		PageData
		Filter listing.Filter
		Items  []model.Item
	}{
		PageData: pd,
		Filter:   filter,
		Items:    listing.SortNewestFirst(filter.Apply(items)),
	})
}

// resultMessages are the banners shown after a submission.
var resultMessages = map[string]string{
	portal.ResultSaved:   "Item posted.",
	portal.ResultMatched: "Item posted and matched with open lost reports.",
	portal.ResultPartial: "Item posted, but some matches could not be recorded.",
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	item, err := store.GetItem(ctx, s.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	var loadErr error
	verifications, err := store.ListVerifications(ctx, s.DB, id)
	if err != nil {
		slog.Error("failed to list verifications", "error", err)
		loadErr = err
	}
	retrievals, err := store.ListRetrievals(ctx, s.DB, id)
	if err != nil {
		slog.Error("failed to list retrievals", "error", err)
		loadErr = err
	}
	matches, err := store.ListMatches(ctx, s.DB, id)
	if err != nil {
		slog.Error("failed to list matches", "error", err)
		loadErr = err
	}

	pd := page(r, item.Name)
	status := http.StatusOK
	result := r.URL.Query().Get("result")
	switch {
	case loadErr != nil:
		pd.Error = "The item history could not be loaded."
		status = http.StatusInternalServerError
	case result == portal.ResultPartial:
		pd.Error = resultMessages[result]
	default:
		pd.Success = resultMessages[result]
	}

	s.Templates.RenderStatus(w, status, "item_detail.html", &struct {
		PageData
		Item          *model.Item
		Verifications []model.Verification
		Retrievals    []model.Retrieval
		Matches       []model.Match
	}{
		PageData:      pd,
		Item:          item,
		Verifications: verifications,
		Retrievals:    retrievals,
		Matches:       matches,
	})
}

// ImageGet handles GET /images/{id}.
func (s *Server) ImageGet(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetImage(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
