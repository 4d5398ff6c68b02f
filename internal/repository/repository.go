// Package repository declares the storage interfaces the services depend
// on. Services take these interfaces, not the concrete sqlite types, so
// tests can inject in-memory fakes and the backend can be swapped without
// touching business logic.
package repository

import (
	"context"

	"github.com/akshatp/pgdesk/internal/model"
)

// SearchFilter holds the optional public-search constraints. Nil pointer
// fields mean "no constraint"; all present constraints are ANDed together.
type SearchFilter struct {
	MinPrice    *float64
	MaxPrice    *float64
	MaxDistance *float64
	Facilities  []string // a listing must contain ALL of these tags
}

type UserRepository interface {
	// Create inserts a user and fills in ID/CreatedAt. Returns
	// apperror.ErrConflict when the (normalized) email already exists.
	Create(ctx context.Context, user *model.User) error
	// GetByEmail looks up a user by normalized email. Returns
	// apperror.ErrNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type ListingRepository interface {
	// Create inserts a listing and fills in ID/CreatedAt. Status is stored
	// as given (the service forces pending before calling).
	Create(ctx context.Context, listing *model.Listing) error
	// ListByOwner returns every listing of one owner, any status,
	// newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error)
	// ListByStatus returns every listing in the given status, newest first,
	// with owner name/email joined in.
	ListByStatus(ctx context.Context, status model.Status) ([]model.Listing, error)
	// ListAll returns every listing regardless of status, ordered by status
	// ascending then created_at descending, with owner fields joined in.
	ListAll(ctx context.Context) ([]model.Listing, error)
	// UpdateStatus sets the status of one listing. Returns
	// apperror.ErrNotFound when the id does not exist.
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	// Search returns approved listings matching the filter, ordered by
	// distance ascending.
	Search(ctx context.Context, filter SearchFilter) ([]model.Listing, error)
}
