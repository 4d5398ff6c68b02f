package model

import "time"

// Status is the moderation state of a listing. Every listing is in exactly
// one of these states; only approved listings are visible to public search.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Listing represents a PG (paying-guest) accommodation listing.
//
// Facilities is the decoded tag sequence; the repository stores it in the
// canonical JSON-array form produced by EncodeFacilities. OwnerName and
// OwnerEmail are only populated by the admin queries that join the owner.
type Listing struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	Name        string    `json:"name"`
	Rent        float64   `json:"rent"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	Distance    float64   `json:"distance"`
	College     string    `json:"college,omitempty"`
	RoomType    string    `json:"roomType,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Deposit     float64   `json:"deposit,omitempty"`
	Facilities  []string  `json:"facilities"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`

	OwnerName  string `json:"ownerName,omitempty"`
	OwnerEmail string `json:"ownerEmail,omitempty"`
}
