// Package portal runs the lost and found submission workflow: image upload,
// item creation and, for found items, matching against open lost reports.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

// ItemStore is the document collection holding all posts.
type ItemStore interface {
	FetchAllItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, it model.Item) (string, error)
	UpdateItemStatus(ctx context.Context, id string, u model.StatusUpdate) error
}

// ImageStore keeps uploaded photos and returns the URL they are served from.
type ImageStore interface {
	UploadImage(ctx context.Context, name string, r io.Reader) (string, error)
}

// Summary outcomes of a submission.
const (
	ResultSaved   = "saved"
	ResultMatched = "saved_with_matches"
	ResultPartial = "partial"
)

// NewItem holds the submitted form fields.
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Date        string `json:"date"`
}

// Upload is an optional image attached to a submission.
type Upload struct {
	Name string
	Data io.Reader
}

// Outcome describes a saved submission.
type Outcome struct {
	Item    model.Item     `json:"item"`
	Matches []model.Item   `json:"matches"`
	Applied []string       `json:"applied"`
	Failed  []MatchFailure `json:"failed,omitempty"`

	// Snapshot is the item set read back after the last write.
	Snapshot []model.Item `json:"-"`
}

// Result returns the summary outcome.
func (o *Outcome) Result() string {
	switch {
	case len(o.Failed) > 0:
		return ResultPartial
	case len(o.Applied) > 0:
		return ResultMatched
	default:
		return ResultSaved
	}
}

// Service coordinates the item and image stores.
type Service struct {
	items  ItemStore
	images ImageStore
	tracer trace.Tracer

	// Now is the clock used for createdAt and the default date.
	Now func() time.Time
}

// NewService returns a Service backed by the given stores.
func NewService(items ItemStore, images ImageStore) *Service {
	return &Service{
		items:  items,
		images: images,
		tracer: otel.Tracer("github.com/erazemk/lostfound/internal/portal"),
		Now:    time.Now,
	}
}

// SubmitLost stores a lost report.
func (s *Service) SubmitLost(ctx context.Context, in NewItem, up *Upload) (*Outcome, error) {
	return s.submit(ctx, model.TypeLost, in, up)
}

// SubmitFound stores a found report and marks every lost report it plausibly
// matches. If some of those updates fail, both the outcome and a
// *PartialMatchError are returned.
func (s *Service) SubmitFound(ctx context.Context, in NewItem, up *Upload) (*Outcome, error) {
	return s.submit(ctx, model.TypeFound, in, up)
}

func (s *Service) submit(ctx context.Context, typ string, in NewItem, up *Upload) (out *Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "portal.submit", trace.WithAttributes(
		attribute.String("item.type", typ),
		attribute.Bool("item.has_image", up != nil),
	))
	defer func() {
		if out != nil {
			span.SetAttributes(
				attribute.String("item.id", out.Item.ID),
				attribute.Int("match.candidates", len(out.Matches)),
				attribute.Int("match.failed", len(out.Failed)),
				attribute.String("result", out.Result()),
			)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	it, err := s.prepare(typ, in)
	if err != nil {
		return nil, err
	}

	if up != nil {
		url, err := s.images.UploadImage(ctx, up.Name, up.Data)
		if err != nil {
			if errors.Is(err, imaging.ErrInvalidImage) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
			}
			return nil, fmt.Errorf("%w: uploading image: %v", ErrPersistence, err)
		}
		it.ImageURL = url
	}

	id, err := s.items.CreateItem(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("%w: creating item: %v", ErrPersistence, err)
	}
	it.ID = id

	all, err := s.items.FetchAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching items: %v", ErrPersistence, err)
	}

	out = &Outcome{Item: it, Matches: []model.Item{}, Applied: []string{}, Snapshot: all}
	if typ == model.TypeLost {
		slog.Info("lost item saved", "item", id, "name", it.Name)
		return out, nil
	}

	out.Matches = matching.FindCandidateMatches(it, all)
	if out.Matches == nil {
		out.Matches = []model.Item{}
	}
	updates := matching.ApplyMatch(out.Matches, it)
	for _, u := range updates {
		if err := s.items.UpdateItemStatus(ctx, u.ID, u); err != nil {
			slog.Warn("failed to mark lost item as matched", "item", u.ID, "found", id, "error", err)
			out.Failed = append(out.Failed, MatchFailure{ID: u.ID, Message: err.Error(), Err: err})
			continue
		}
		out.Applied = append(out.Applied, u.ID)
	}

	if len(out.Applied) > 0 {
		s.refresh(ctx, out, updates)
	}

	slog.Info("found item saved", "item", id, "name", it.Name,
		"candidates", len(out.Matches), "applied", len(out.Applied), "failed", len(out.Failed))

	if len(out.Failed) > 0 {
		return out, &PartialMatchError{FoundID: id, Applied: out.Applied, Failed: out.Failed}
	}
	return out, nil
}

// refresh re-reads the collection after status updates. If the read fails,
// the applied updates are replayed onto the previous snapshot instead.
func (s *Service) refresh(ctx context.Context, out *Outcome, updates []model.StatusUpdate) {
	all, err := s.items.FetchAllItems(ctx)
	if err == nil {
		out.Snapshot = all
		return
	}
	slog.Warn("failed to re-read items after matching", "error", err)

	applied := make(map[string]bool, len(out.Applied))
	for _, id := range out.Applied {
		applied[id] = true
	}
	snapshot := make([]model.Item, len(out.Snapshot))
	copy(snapshot, out.Snapshot)
	for i := range snapshot {
		for _, u := range updates {
			if applied[u.ID] {
				matching.Apply(&snapshot[i], u)
			}
		}
	}
	out.Snapshot = snapshot
}

// prepare validates the form and fills in the server-side fields.
func (s *Service) prepare(typ string, in NewItem) (model.Item, error) {
	if !model.ValidType(typ) {
		return model.Item{}, fmt.Errorf("%w: unknown type %q", ErrInvalidItem, typ)
	}

	it := model.Item{
		Type:        typ,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Contact:     strings.TrimSpace(in.Contact),
		Location:    strings.TrimSpace(in.Location),
		Date:        strings.TrimSpace(in.Date),
		Status:      model.StatusPosted,
	}
	if typ == model.TypeLost {
		it.Email = strings.TrimSpace(in.Email)
	}

	var missing []string
	if it.Name == "" {
		missing = append(missing, "name")
	}
	if it.Description == "" {
		missing = append(missing, "description")
	}
	if it.Contact == "" {
		missing = append(missing, "contact")
	}
	if len(missing) > 0 {
		return model.Item{}, fmt.Errorf("%w: %s required", ErrInvalidItem, strings.Join(missing, ", "))
	}

	now := s.Now()
	if it.Date == "" {
		it.Date = now.UTC().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, it.Date); err != nil {
		return model.Item{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidItem)
	}
	it.CreatedAt = now.UnixMilli()

	return it, nil
}
