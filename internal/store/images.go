package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// SaveImage stores image data under a fresh id.
func SaveImage(ctx context.Context, db *sql.DB, name string, data []byte, mime string) (*model.Image, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO images (id, name, data, mime) VALUES (?, ?, ?, ?)`,
		id, name, data, mime,
	)
	if err != nil {
		return nil, fmt.Errorf("saving image: %w", err)
	}

	img := &model.Image{ID: id, Name: name, MIME: mime, Size: len(data)}
	err = db.QueryRowContext(ctx,
		`SELECT created_at FROM images WHERE id = ?`, id,
	).Scan(&img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return img, nil
}

// GetImage returns an image's data and MIME type.
func GetImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM images WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime, nil
}
