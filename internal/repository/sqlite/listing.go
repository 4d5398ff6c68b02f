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

// ListingDB is the listing-table view over the shared connection pool,
// obtained via DB.Listings.
type ListingDB struct {
	conn *sql.DB
}

// compile-time check that *ListingDB implements repository.ListingRepository
var _ repository.ListingRepository = (*ListingDB)(nil)

const listingColumns = `id, owner_id, name, rent, address, city, pincode, distance,
	college, room_type, gender, deposit, facilities, description, status, created_at`

// Create inserts a new listing. Facilities are written in the codec's
// canonical JSON-array form so the search containment predicate can rely
// on it.
func (db *ListingDB) Create(ctx context.Context, listing *model.Listing) error {
	listing.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO listings (owner_id, name, rent, address, city, pincode, distance,
		 college, room_type, gender, deposit, facilities, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.OwnerID,
		listing.Name,
		listing.Rent,
		listing.Address,
		listing.City,
		listing.Pincode,
		listing.Distance,
		listing.College,
		listing.RoomType,
		listing.Gender,
		listing.Deposit,
		model.EncodeFacilities(listing.Facilities),
		listing.Description,
		listing.Status,
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating listing: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new listing id: %w", err)
	}
	listing.ID = id

	return nil
}

// ListByOwner returns every listing of one owner across all statuses,
// newest first.
func (db *ListingDB) ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+listingColumns+`
		 FROM listings
		 WHERE owner_id = ?
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing by owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	return collectListings(rows, false)
}

// ListByStatus returns every listing in the given status, newest first,
// with the owner's display name and email joined in.
func (db *ListingDB) ListByStatus(ctx context.Context, status model.Status) ([]model.Listing, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT l.id, l.owner_id, l.name, l.rent, l.address, l.city, l.pincode, l.distance,
		        l.college, l.room_type, l.gender, l.deposit, l.facilities, l.description,
		        l.status, l.created_at, u.name, u.email
		 FROM listings l
		 JOIN users u ON u.id = l.owner_id
		 WHERE l.status = ?
		 ORDER BY l.created_at DESC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing by status %s: %w", status, err)
	}
	defer rows.Close()

	return collectListings(rows, true)
}

// ListAll returns every listing regardless of status, ordered by status
// ascending (lexical order of the stored enum) then created_at descending,
// with owner fields joined in.
func (db *ListingDB) ListAll(ctx context.Context) ([]model.Listing, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT l.id, l.owner_id, l.name, l.rent, l.address, l.city, l.pincode, l.distance,
		        l.college, l.room_type, l.gender, l.deposit, l.facilities, l.description,
		        l.status, l.created_at, u.name, u.email
		 FROM listings l
		 JOIN users u ON u.id = l.owner_id
		 ORDER BY l.status ASC, l.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all: %w", err)
	}
	defer rows.Close()

	return collectListings(rows, true)
}

// UpdateStatus sets the status of exactly one listing by id. No check is
// made on the current status; a rejected listing can later be approved and
// vice versa. Returns apperror.ErrNotFound when the id does not exist.
func (db *ListingDB) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE listings SET status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating listing %d status: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("listing", id)
	}

	return nil
}

// Search returns approved listings matching the filter, nearest first.
//
// The query is built up from a fixed base predicate (status = approved)
// plus one conjunct per present filter. Every value goes through a ?
// placeholder; the dynamic part is only the WHERE skeleton.
//
// Facilities use intersection semantics: one EXISTS conjunct per requested
// tag, so a listing must carry ALL of them. The containment test runs
// against the stored JSON-array encoding via json_each; json_valid guards
// skip any legacy comma-separated row rather than erroring the whole query.
func (db *ListingDB) Search(ctx context.Context, filter repository.SearchFilter) ([]model.Listing, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + listingColumns + ` FROM listings WHERE status = ?`)
	args := []any{model.StatusApproved}

	if filter.MinPrice != nil {
		sb.WriteString(` AND rent >= ?`)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		sb.WriteString(` AND rent <= ?`)
		args = append(args, *filter.MaxPrice)
	}
	if filter.MaxDistance != nil {
		sb.WriteString(` AND distance <= ?`)
		args = append(args, *filter.MaxDistance)
	}
	for _, tag := range filter.Facilities {
		sb.WriteString(` AND json_valid(facilities)
			AND EXISTS (SELECT 1 FROM json_each(facilities) WHERE json_each.value = ?)`)
		args = append(args, tag)
	}

	sb.WriteString(` ORDER BY distance ASC`)

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows, false)
}

// collectListings scans rows into listings, decoding the facilities column
// through the codec. withOwner indicates the query joined u.name/u.email as
// trailing columns.
func collectListings(rows *sql.Rows, withOwner bool) ([]model.Listing, error) {
	listings := make([]model.Listing, 0, 16)

	for rows.Next() {
		var l model.Listing
		var facilities string

		dest := []any{
			&l.ID, &l.OwnerID, &l.Name, &l.Rent, &l.Address, &l.City, &l.Pincode,
			&l.Distance, &l.College, &l.RoomType, &l.Gender, &l.Deposit,
			&facilities, &l.Description, &l.Status, &l.CreatedAt,
		}
		if withOwner {
			dest = append(dest, &l.OwnerName, &l.OwnerEmail)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlite: scanning listing row: %w", err)
		}

		l.Facilities = model.DecodeFacilities(facilities)
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating listings: %w", err)
	}

	return listings, nil
}
