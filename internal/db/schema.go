package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id           TEXT PRIMARY KEY,
    type         TEXT NOT NULL CHECK (type IN ('lost', 'found')),
    name         TEXT NOT NULL,
    description  TEXT NOT NULL,
    contact      TEXT NOT NULL,
    email        TEXT,
    location     TEXT NOT NULL DEFAULT '',
    date         TEXT NOT NULL,
    image_url    TEXT,
    created_at   INTEGER NOT NULL,
    status       TEXT NOT NULL DEFAULT 'posted' CHECK (status IN ('posted', 'matched')),
    matched_with TEXT,
    deleted_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);

CREATE TABLE IF NOT EXISTS images (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS matches (
    lost_id    TEXT NOT NULL REFERENCES items(id),
    found_id   TEXT NOT NULL REFERENCES items(id),
    matched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (lost_id, found_id)
);

CREATE TABLE IF NOT EXISTS verifications (
    id          INTEGER PRIMARY KEY,
    item_id     TEXT NOT NULL REFERENCES items(id),
    verified_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    verified_by INTEGER REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS retrievals (
    id           INTEGER PRIMARY KEY,
    item_id      TEXT NOT NULL REFERENCES items(id),
    retrieved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    retrieved_by INTEGER REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: lookups of matches by found item for the detail page.
	`CREATE INDEX IF NOT EXISTS idx_matches_found ON matches(found_id)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist and
// applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
