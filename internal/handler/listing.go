package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/auth"
	"github.com/akshatp/pgdesk/internal/model"
	"github.com/akshatp/pgdesk/internal/repository"
	"github.com/akshatp/pgdesk/internal/service"
)

// ListingHandler serves the listing lifecycle: owner submission, admin
// moderation, and the public search.
type ListingHandler struct {
	listings *service.ListingService
	logger   *slog.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger}
}

// submitRequest carries the owner-supplied listing fields. Facilities is
// untyped because clients send either a JSON array or a CSV string; the
// service normalizes both. Any status field a client sends is ignored.
type submitRequest struct {
	Name        string  `json:"name"`
	Rent        float64 `json:"rent"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Pincode     string  `json:"pincode"`
	Distance    float64 `json:"distance"`
	College     string  `json:"college"`
	RoomType    string  `json:"roomType"`
	Gender      string  `json:"gender"`
	Deposit     float64 `json:"deposit"`
	Facilities  any     `json:"facilities"`
	Description string  `json:"description"`
}

// statusResponse is shared by submit, approve, and reject.
type statusResponse struct {
	Message string       `json:"message"`
	PgID    int64        `json:"pgId"`
	Status  model.Status `json:"status"`
}

type listingsResponse struct {
	Total    int             `json:"total"`
	Listings []model.Listing `json:"listings"`
}

func newListingsResponse(listings []model.Listing) listingsResponse {
	if listings == nil {
		// Keep the JSON field an array, never null.
		listings = []model.Listing{}
	}
	return listingsResponse{Total: len(listings), Listings: listings}
}

// HandleSubmit creates a listing for the authenticated owner.
//
// HTTP: POST /api/pg/add
//
// The new listing always starts out pending, whatever the client claims.
func (h *ListingHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("missing identity"))
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	listing, err := h.listings.Submit(r.Context(), identity.UserID, service.SubmitInput{
		Name:        req.Name,
		Rent:        req.Rent,
		Address:     req.Address,
		City:        req.City,
		Pincode:     req.Pincode,
		Distance:    req.Distance,
		College:     req.College,
		RoomType:    req.RoomType,
		Gender:      req.Gender,
		Deposit:     req.Deposit,
		Facilities:  req.Facilities,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, statusResponse{
		Message: "listing submitted for review",
		PgID:    listing.ID,
		Status:  listing.Status,
	})
}

// HandleOwnerListings returns the caller's own listings, any status.
//
// HTTP: GET /api/owner/pgs
func (h *ListingHandler) HandleOwnerListings(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("missing identity"))
		return
	}

	listings, err := h.listings.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newListingsResponse(listings))
}

// HandlePending returns listings awaiting moderation, newest first.
//
// HTTP: GET /api/admin/pgs/pending
func (h *ListingHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListingsResponse(listings))
}

// HandleAll returns every listing regardless of status.
//
// HTTP: GET /api/admin/pgs
func (h *ListingHandler) HandleAll(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListingsResponse(listings))
}

// HandleApprove marks a pending listing approved.
//
// HTTP: PATCH /api/admin/pgs/{id}/approve
func (h *ListingHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, model.StatusApproved, "listing approved")
}

// HandleReject marks a pending listing rejected.
//
// HTTP: PATCH /api/admin/pgs/{id}/reject
func (h *ListingHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, model.StatusRejected, "listing rejected")
}

func (h *ListingHandler) moderate(w http.ResponseWriter, r *http.Request, status model.Status, message string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "listing id must be an integer"))
		return
	}

	if err := h.listings.SetStatus(r.Context(), id, status); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Message: message,
		PgID:    id,
		Status:  status,
	})
}

// HandleSearch is the public search over approved listings.
//
// HTTP: GET /api/pgs?minPrice=&maxPrice=&maxDistance=&facilities=wifi,ac
//
// Results come back ordered by distance ascending. A facilities filter
// requires every named tag to be present on a listing.
func (h *ListingHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	filter := repository.SearchFilter{}

	q := r.URL.Query()
	for _, p := range []struct {
		key  string
		dest **float64
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
		{"maxDistance", &filter.MaxDistance},
	} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, apperror.ValidationFailed(p.key, "must be a number"))
			return
		}
		*p.dest = &value
	}

	filter.Facilities = model.DecodeFacilities(q.Get("facilities"))

	listings, err := h.listings.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newListingsResponse(listings))
}
