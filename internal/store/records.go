package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// CreateVerification records that an admin verified an item.
func CreateVerification(ctx context.Context, db *sql.DB, itemID string, verifiedBy *int64) (*model.Verification, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO verifications (item_id, verified_by) VALUES (?, ?)`,
		itemID, verifiedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating verification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting verification id: %w", err)
	}

	v := &model.Verification{}
	err = db.QueryRowContext(ctx,
		`SELECT id, item_id, verified_at, verified_by FROM verifications WHERE id = ?`, id,
	).Scan(&v.ID, &v.ItemID, &v.VerifiedAt, &v.VerifiedBy)
	if err != nil {
		return nil, fmt.Errorf("getting verification: %w", err)
	}
	return v, nil
}

// ListVerifications returns an item's verifications, newest first.
func ListVerifications(ctx context.Context, db *sql.DB, itemID string) ([]model.Verification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, verified_at, verified_by FROM verifications
		 WHERE item_id = ? ORDER BY verified_at DESC, id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing verifications: %w", err)
	}
	defer rows.Close()

	var out []model.Verification
	for rows.Next() {
		var v model.Verification
		if err := rows.Scan(&v.ID, &v.ItemID, &v.VerifiedAt, &v.VerifiedBy); err != nil {
			return nil, fmt.Errorf("scanning verification: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateRetrieval records that an item was handed back.
func CreateRetrieval(ctx context.Context, db *sql.DB, itemID string, retrievedBy *int64) (*model.Retrieval, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO retrievals (item_id, retrieved_by) VALUES (?, ?)`,
		itemID, retrievedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating retrieval: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting retrieval id: %w", err)
	}

	r := &model.Retrieval{}
	err = db.QueryRowContext(ctx,
		`SELECT id, item_id, retrieved_at, retrieved_by FROM retrievals WHERE id = ?`, id,
	).Scan(&r.ID, &r.ItemID, &r.RetrievedAt, &r.RetrievedBy)
	if err != nil {
		return nil, fmt.Errorf("getting retrieval: %w", err)
	}
	return r, nil
}

// ListRetrievals returns an item's retrievals, newest first.
func ListRetrievals(ctx context.Context, db *sql.DB, itemID string) ([]model.Retrieval, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, retrieved_at, retrieved_by FROM retrievals
		 WHERE item_id = ? ORDER BY retrieved_at DESC, id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing retrievals: %w", err)
	}
	defer rows.Close()

	var out []model.Retrieval
	for rows.Next() {
		var r model.Retrieval
		if err := rows.Scan(&r.ID, &r.ItemID, &r.RetrievedAt, &r.RetrievedBy); err != nil {
			return nil, fmt.Errorf("scanning retrieval: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListMatches returns match records, optionally limited to those involving
// itemID on either side.
func ListMatches(ctx context.Context, db *sql.DB, itemID string) ([]model.Match, error) {
	query := `SELECT m.lost_id, m.found_id, m.matched_at, l.name AS lost_name, f.name AS found_name
	          FROM matches m
	          JOIN items l ON l.id = m.lost_id
	          JOIN items f ON f.id = m.found_id
	          WHERE 1=1`
	var args []any

	if itemID != "" {
		query += ` AND (m.lost_id = ? OR m.found_id = ?)`
		args = append(args, itemID, itemID)
	}
	query += ` ORDER BY m.matched_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.LostID, &m.FoundID, &m.MatchedAt, &m.LostName, &m.FoundName); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
