package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"testing"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/model"
	"github.com/akshatp/pgdesk/internal/repository"
)

// mockListingRepo is an in-memory ListingRepository. Ordering rules match
// the SQL implementation closely enough for the service-level behavior
// under test.
type mockListingRepo struct {
	listings map[int64]*model.Listing
	nextID   int64
}

func newMockListingRepo() *mockListingRepo {
	return &mockListingRepo{listings: make(map[int64]*model.Listing)}
}

func (m *mockListingRepo) Create(_ context.Context, l *model.Listing) error {
	m.nextID++
	l.ID = m.nextID
	stored := *l
	m.listings[l.ID] = &stored
	return nil
}

func (m *mockListingRepo) ListByOwner(_ context.Context, ownerID int64) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockListingRepo) ListByStatus(_ context.Context, status model.Status) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		if l.Status == status {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockListingRepo) ListAll(_ context.Context) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *mockListingRepo) UpdateStatus(_ context.Context, id int64, status model.Status) error {
	l, ok := m.listings[id]
	if !ok {
		return apperror.NotFound("listing", id)
	}
	l.Status = status
	return nil
}

func (m *mockListingRepo) Search(_ context.Context, filter repository.SearchFilter) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range m.listings {
		if l.Status != model.StatusApproved {
			continue
		}
		if filter.MinPrice != nil && l.Rent < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && l.Rent > *filter.MaxPrice {
			continue
		}
		if filter.MaxDistance != nil && l.Distance > *filter.MaxDistance {
			continue
		}
		if !containsAll(l.Facilities, filter.Facilities) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func newTestListingService(t *testing.T) (*ListingService, *mockListingRepo) {
	t.Helper()
	repo := newMockListingRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewListingService(repo, logger), repo
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		Name:       "Sunrise PG",
		Rent:       8000,
		Address:    "MG Road",
		City:       "Pune",
		Pincode:    "411001",
		Distance:   2,
		Facilities: []string{"wifi", "food"},
	}
}

// =========================================================================
// SUBMIT TESTS
// =========================================================================

func TestSubmit_Success(t *testing.T) {
	svc, _ := newTestListingService(t)

	listing, err := svc.Submit(context.Background(), 1, validSubmitInput())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if listing.ID == 0 {
		t.Error("expected listing to have an ID")
	}
	if listing.OwnerID != 1 {
		t.Errorf("OwnerID = %d, want 1", listing.OwnerID)
	}
	if !reflect.DeepEqual(listing.Facilities, []string{"wifi", "food"}) {
		t.Errorf("Facilities = %v, want [wifi food]", listing.Facilities)
	}
}

func TestSubmit_AlwaysStartsPending(t *testing.T) {
	svc, _ := newTestListingService(t)

	listing, err := svc.Submit(context.Background(), 1, validSubmitInput())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if listing.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", listing.Status)
	}
}

func TestSubmit_MissingRequiredFields(t *testing.T) {
	svc, _ := newTestListingService(t)

	mutations := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing name", func(in *SubmitInput) { in.Name = "  " }},
		{"zero rent", func(in *SubmitInput) { in.Rent = 0 }},
		{"missing address", func(in *SubmitInput) { in.Address = "" }},
		{"missing city", func(in *SubmitInput) { in.City = "" }},
		{"missing pincode", func(in *SubmitInput) { in.Pincode = "" }},
		{"zero distance", func(in *SubmitInput) { in.Distance = 0 }},
	}

	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			in := validSubmitInput()
			tc.mutate(&in)
			_, err := svc.Submit(context.Background(), 1, in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Submit() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSubmit_FacilitiesFromCSVString(t *testing.T) {
	svc, _ := newTestListingService(t)

	in := validSubmitInput()
	in.Facilities = "wifi, food , ac"

	listing, err := svc.Submit(context.Background(), 1, in)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !reflect.DeepEqual(listing.Facilities, []string{"wifi", "food", "ac"}) {
		t.Errorf("Facilities = %v, want [wifi food ac]", listing.Facilities)
	}
}

// =========================================================================
// MODERATION TESTS
// =========================================================================

func TestSetStatus_ApproveThenReject(t *testing.T) {
	svc, repo := newTestListingService(t)
	listing, _ := svc.Submit(context.Background(), 1, validSubmitInput())

	if err := svc.SetStatus(context.Background(), listing.ID, model.StatusApproved); err != nil {
		t.Fatalf("SetStatus(approved) error = %v", err)
	}
	if repo.listings[listing.ID].Status != model.StatusApproved {
		t.Errorf("Status = %q, want approved", repo.listings[listing.ID].Status)
	}

	// No guard on the current status: a later reversal is a valid call.
	if err := svc.SetStatus(context.Background(), listing.ID, model.StatusRejected); err != nil {
		t.Fatalf("SetStatus(rejected) error = %v", err)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	svc, _ := newTestListingService(t)

	err := svc.SetStatus(context.Background(), 404404, model.StatusApproved)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetStatus() error = %v, want ErrNotFound", err)
	}
}

func TestSetStatus_RejectsPendingTarget(t *testing.T) {
	svc, _ := newTestListingService(t)
	listing, _ := svc.Submit(context.Background(), 1, validSubmitInput())

	err := svc.SetStatus(context.Background(), listing.ID, model.StatusPending)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("SetStatus(pending) error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// SEARCH TESTS
// =========================================================================

func TestSearch_OnlyApprovedVisible(t *testing.T) {
	svc, _ := newTestListingService(t)

	visible, _ := svc.Submit(context.Background(), 1, validSubmitInput())
	hidden, _ := svc.Submit(context.Background(), 1, validSubmitInput())
	_ = svc.SetStatus(context.Background(), visible.ID, model.StatusApproved)
	_ = svc.SetStatus(context.Background(), hidden.ID, model.StatusRejected)

	got, err := svc.Search(context.Background(), repository.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != visible.ID {
		t.Errorf("Search() = %d results, want exactly the approved listing", len(got))
	}
}
