// Package service holds the business rules between the HTTP handlers and
// the repositories.
//
// A listing's lifecycle is pending → approved | rejected, moderated by
// admins. Only approved listings are visible through the public search.
// The service enforces that lifecycle; the repository only stores what it
// is told.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/model"
	"github.com/akshatp/pgdesk/internal/repository"
)

// ListingService handles listing submission, moderation, and search.
type ListingService struct {
	repo   repository.ListingRepository
	logger *slog.Logger
}

// NewListingService creates a ListingService.
func NewListingService(repo repository.ListingRepository, logger *slog.Logger) *ListingService {
	return &ListingService{
		repo:   repo,
		logger: logger,
	}
}

// SubmitInput carries the owner-supplied fields of a new listing.
// Facilities accepts any representation the codec understands (JSON array
// or comma-separated string). There is deliberately no status field: new
// listings always start pending, whatever the caller sends.
type SubmitInput struct {
	Name        string
	Rent        float64
	Address     string
	City        string
	Pincode     string
	Distance    float64
	College     string
	RoomType    string
	Gender      string
	Deposit     float64
	Facilities  any
	Description string
}

// Submit validates and saves a new listing for the given owner.
//
// Required fields: name, rent, address, city, pincode, distance. Rent and
// distance must be positive. Facilities are normalized through the codec
// before storage. The status of a new listing is always pending.
func (s *ListingService) Submit(ctx context.Context, ownerID int64, in SubmitInput) (*model.Listing, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Pincode = strings.TrimSpace(in.Pincode)

	switch {
	case in.Name == "":
		return nil, apperror.ValidationFailed("name", "name is required")
	case in.Rent <= 0:
		return nil, apperror.ValidationFailed("rent", "rent is required and must be positive")
	case in.Address == "":
		return nil, apperror.ValidationFailed("address", "address is required")
	case in.City == "":
		return nil, apperror.ValidationFailed("city", "city is required")
	case in.Pincode == "":
		return nil, apperror.ValidationFailed("pincode", "pincode is required")
	case in.Distance <= 0:
		return nil, apperror.ValidationFailed("distance", "distance is required and must be positive")
	}

	listing := &model.Listing{
		OwnerID:     ownerID,
		Name:        in.Name,
		Rent:        in.Rent,
		Address:     in.Address,
		City:        in.City,
		Pincode:     in.Pincode,
		Distance:    in.Distance,
		College:     strings.TrimSpace(in.College),
		RoomType:    strings.TrimSpace(in.RoomType),
		Gender:      strings.TrimSpace(in.Gender),
		Deposit:     in.Deposit,
		Facilities:  model.NormalizeFacilities(in.Facilities),
		Description: strings.TrimSpace(in.Description),
		Status:      model.StatusPending,
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.logger.Error("failed to create listing",
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	s.logger.Info("listing submitted",
		slog.Int64("id", listing.ID),
		slog.Int64("ownerID", ownerID),
		slog.String("city", listing.City),
	)

	return listing, nil
}

// ListByOwner returns every listing of one owner, any status, newest first.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID int64) ([]model.Listing, error) {
	listings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list owner listings",
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing owner listings: %w", err)
	}
	return listings, nil
}

// ListPending returns every pending listing with owner fields attached,
// newest first. Admin-only (enforced by middleware upstream).
func (s *ListingService) ListPending(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.repo.ListByStatus(ctx, model.StatusPending)
	if err != nil {
		s.logger.Error("failed to list pending listings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing pending listings: %w", err)
	}
	return listings, nil
}

// ListAll returns every listing regardless of status, with owner fields
// attached, ordered by status then recency. Admin-only.
func (s *ListingService) ListAll(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list all listings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing all listings: %w", err)
	}
	return listings, nil
}

// SetStatus transitions one listing to approved or rejected.
//
// Only those two target states are accepted; nothing can be moved back to
// pending. There is no guard on the current status: re-moderation is
// allowed, so repeated or reversed decisions are valid calls. Returns
// apperror.ErrNotFound when the id does not exist.
func (s *ListingService) SetStatus(ctx context.Context, id int64, status model.Status) error {
	if status != model.StatusApproved && status != model.StatusRejected {
		return apperror.ValidationFailed("status", "status must be approved or rejected")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("listing moderated",
		slog.Int64("id", id),
		slog.String("status", string(status)),
	)
	return nil
}

// Search returns approved listings matching the filter, nearest first.
// Public; no authentication involved.
func (s *ListingService) Search(ctx context.Context, filter repository.SearchFilter) ([]model.Listing, error) {
	listings, err := s.repo.Search(ctx, filter)
	if err != nil {
		s.logger.Error("search failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching listings: %w", err)
	}
	return listings, nil
}
