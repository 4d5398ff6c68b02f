package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/model"
	"github.com/akshatp/pgdesk/internal/repository"
)

// UserDB is the user-table view over the shared connection pool,
// obtained via DB.Users.
type UserDB struct {
	conn *sql.DB
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// Create inserts a new user.
//
// The service layer has already normalized the email to lower case and
// checked for an existing row; the UNIQUE constraint on email is the
// authoritative guard against the race between that check and this insert.
// A constraint violation is translated to apperror.ErrConflict so callers
// see the same error whichever side of the race they lose on.
func (db *UserDB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email already registered")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByEmail retrieves a user by their normalized email.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user not found with email %s", email),
			}
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}

	return &u, nil
}

// GetByID retrieves a user by their id.
func (db *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite surfaces these as "constraint failed: UNIQUE
// constraint failed: <table>.<column>" messages.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
