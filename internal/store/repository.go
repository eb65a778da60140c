package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
)

// ImageURLPrefix is the path under which stored images are served.
const ImageURLPrefix = "/images/"

// ItemRepository exposes the item table through the narrow interface used
// by the submission workflow.
type ItemRepository struct {
	DB *sql.DB
}

// FetchAllItems returns every non-deleted item.
func (r *ItemRepository) FetchAllItems(ctx context.Context) ([]model.Item, error) {
	return ListItems(ctx, r.DB)
}

// CreateItem persists it and returns the assigned id.
func (r *ItemRepository) CreateItem(ctx context.Context, it model.Item) (string, error) {
	created, err := CreateItem(ctx, r.DB, it)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateItemStatus applies a status update to a single item.
func (r *ItemRepository) UpdateItemStatus(ctx context.Context, id string, u model.StatusUpdate) error {
	return UpdateItemStatus(ctx, r.DB, id, u)
}

// ImageRepository stores processed uploads in the images table.
type ImageRepository struct {
	DB *sql.DB

	// MaxBytes caps accepted uploads. Zero means imaging.MaxUploadBytes.
	MaxBytes int64
}

// UploadImage validates, downscales and stores an image, returning the URL
// it is served from.
func (r *ImageRepository) UploadImage(ctx context.Context, name string, data io.Reader) (string, error) {
	limit := r.MaxBytes
	if limit <= 0 {
		limit = imaging.MaxUploadBytes
	}
	result, err := imaging.ProcessLimit(data, limit)
	if err != nil {
		return "", fmt.Errorf("processing image: %w", err)
	}

	img, err := SaveImage(ctx, r.DB, name, result.Data, result.MIME)
	if err != nil {
		return "", err
	}
	return ImageURLPrefix + img.ID, nil
}
