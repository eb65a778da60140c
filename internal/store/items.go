package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrNotFound is returned by updates that target a missing or deleted item.
var ErrNotFound = errors.New("item not found")

// ErrInvalidUpdate is returned for status updates that are not well formed.
var ErrInvalidUpdate = errors.New("invalid status update")

// ErrStatusRegression is returned when an update would move a matched item
// back to posted.
var ErrStatusRegression = errors.New("matched item cannot return to posted")

const itemColumns = `id, type, name, description, contact, email, location, date,
	image_url, created_at, status, matched_with`

// CreateItem stores a new item under a fresh id and returns it.
func CreateItem(ctx context.Context, db *sql.DB, it model.Item) (*model.Item, error) {
	it.ID = uuid.NewString()
	if it.Status == "" {
		it.Status = model.StatusPosted
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Type, it.Name, it.Description, it.Contact, nullString(it.Email),
		it.Location, it.Date, nullString(it.ImageURL), it.CreatedAt, it.Status,
		nullString(it.MatchedWith),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, it.ID)
}

// GetItem returns a non-deleted item by ID.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return it, nil
}

// ListItems returns all non-deleted items in submission order.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE deleted_at IS NULL ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItemStatus sets an item's status and match reference. A transition
// to matched also records the pairing in the matches table. Reapplying the
// same update is a no-op.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id string, u model.StatusUpdate) error {
	if u.Status != model.StatusPosted && u.Status != model.StatusMatched {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidUpdate, u.Status)
	}
	if u.Status != model.StatusMatched && u.MatchedWith != "" {
		return fmt.Errorf("%w: matchedWith requires status %q", ErrInvalidUpdate, model.StatusMatched)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM items WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking item status: %w", err)
	}
	if current == model.StatusMatched && u.Status == model.StatusPosted {
		return ErrStatusRegression
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET status = ?, matched_with = ? WHERE id = ?`,
		u.Status, nullString(u.MatchedWith), id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}

	if u.Status == model.StatusMatched && u.MatchedWith != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO matches (lost_id, found_id) VALUES (?, ?)`,
			id, u.MatchedWith,
		)
		if err != nil {
			return fmt.Errorf("recording match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing status update: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*model.Item, error) {
	it := &model.Item{}
	var email, imageURL, matchedWith sql.NullString
	err := s.Scan(&it.ID, &it.Type, &it.Name, &it.Description, &it.Contact, &email,
		&it.Location, &it.Date, &imageURL, &it.CreatedAt, &it.Status, &matchedWith)
	if err != nil {
		return nil, err
	}
	it.Email = email.String
	it.ImageURL = imageURL.String
	it.MatchedWith = matchedWith.String
	return it, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
