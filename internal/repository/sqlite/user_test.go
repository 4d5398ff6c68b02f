package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/model"
)

// newTestDB returns a *DB backed by a fresh in-memory database that exists
// only for the duration of the test. t.Cleanup closes it when the test
// (including subtests) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors. Email is
// derived from name the way the service layer would store it: lower-cased.
func createTestUser(t *testing.T, db *DB, name string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$04$fakehashfortests",
		Role:         role,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "$2a$04$fakehashfortests",
		Role:         model.RoleStudent,
	}

	err := db.Users().Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "first", model.RoleOwner)

	duplicate := &model.User{
		Name:         "Second",
		Email:        "first@example.com", // same email
		PasswordHash: "$2a$04$otherhash",
		Role:         model.RoleStudent,
	}
	err := db.Users().Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "lookup", model.RoleOwner)

	found, err := db.Users().GetByEmail(context.Background(), "lookup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}
	if found.Role != model.RoleOwner {
		t.Errorf("Role = %q, want %q", found.Role, model.RoleOwner)
	}
	if found.PasswordHash == "" {
		t.Error("GetByEmail() should return the stored password hash")
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByEmail(context.Background(), "ghost@example.com")
	if err == nil {
		t.Fatal("GetByEmail() should have returned an error for nonexistent email")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "byid", model.RoleAdmin)

	found, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Email != "byid@example.com" {
		t.Errorf("Email = %q, want %q", found.Email, "byid@example.com")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 99999)
	if err == nil {
		t.Fatal("GetByID() should have returned an error for nonexistent id")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}
