package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrLastAdmin is returned when a change would leave the portal without an
// active admin.
var ErrLastAdmin = errors.New("cannot remove the last admin")

const userColumns = `id, username, password_hash, role, created_at, deleted_at`

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUserWhere(ctx, db, `id = ?`, id)
}

// GetUserByUsername returns the active user with the given username, or the
// most recently deleted one if no active user holds it.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	return getUserWhere(ctx, db, `username = ? ORDER BY deleted_at IS NOT NULL, id DESC LIMIT 1`, username)
}

func getUserWhere(ctx context.Context, db *sql.DB, where string, arg any) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role. Demoting the last admin fails with
// ErrLastAdmin.
func UpdateUserRole(ctx context.Context, db *sql.DB, id int64, role string) error {
	if role != model.RoleAdmin {
		if err := guardLastAdmin(ctx, db, id); err != nil {
			return err
		}
	}

	_, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user. Deleting the last admin fails with
// ErrLastAdmin.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	if err := guardLastAdmin(ctx, db, id); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// guardLastAdmin fails if id is the only active admin.
func guardLastAdmin(ctx context.Context, db *sql.DB, id int64) error {
	var others, self int
	err := db.QueryRowContext(ctx,
		`SELECT
		     COUNT(*) FILTER (WHERE id != ?),
		     COUNT(*) FILTER (WHERE id = ?)
		 FROM users WHERE role = 'admin' AND deleted_at IS NULL`,
		id, id,
	).Scan(&others, &self)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if self > 0 && others == 0 {
		return ErrLastAdmin
	}
	return nil
}
