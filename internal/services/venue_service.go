// Package services – VenueService
//
// Venues are the parent entities items hang off. This service covers venue
// creation and browsing, staging intake (the entry point of the pipeline),
// and the periodic sweep that evicts staging records nobody promoted.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
)

// DefaultStagingTTL is how long an unpromoted staging record survives before
// the sweep removes it.
const DefaultStagingTTL = 7 * 24 * time.Hour

// sweepBatch caps how many staging rows one sweep pass deletes.
const sweepBatch = 500

var titleCaser = cases.Title(language.Turkish)

// VenueService owns venue CRUD and the staging side of the pipeline.
type VenueService struct {
	DB *gorm.DB

	// StagingTTL overrides DefaultStagingTTL when positive.
	StagingTTL time.Duration
}

// CreateVenueRequest is the input to CreateVenue.
type CreateVenueRequest struct {
	ID       string // optional; generated when empty
	Name     string
	City     string
	District string
	Address  string
	CallerID string
}

// CreateVenue inserts a venue. The name, city, and district are stored
// title-cased so denormalized copies on items render consistently.
func (s *VenueService) CreateVenue(ctx context.Context, req CreateVenueRequest) (*domain.Venue, error) {
	if strings.TrimSpace(req.CallerID) == "" {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrVenueNameRequired
	}

	v := &domain.Venue{
		ID:            strings.TrimSpace(req.ID),
		Name:          titleCaser.String(name),
		City:          titleCaser.String(strings.TrimSpace(req.City)),
		District:      titleCaser.String(strings.TrimSpace(req.District)),
		Address:       strings.TrimSpace(req.Address),
		ContributedBy: req.CallerID,
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if err := repo.CreateVenue(ctx, s.DB, v); err != nil {
		if errors.Is(err, repo.ErrDuplicate) || isUniqueViolation(err) {
			return nil, ErrVenueExists
		}
		return nil, err
	}
	return v, nil
}

// GetVenue fetches one venue by id.
func (s *VenueService) GetVenue(ctx context.Context, id string) (*domain.Venue, error) {
	v, err := repo.GetVenue(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVenueNotFound
	}
	return v, err
}

// ListVenues returns one page of venues plus the total count.
func (s *VenueService) ListVenues(ctx context.Context, offset, limit int) ([]domain.Venue, int64, error) {
	total, err := repo.CountVenues(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	venues, err := repo.ListVenuesPage(ctx, s.DB, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return venues, total, nil
}

// StageItemRequest is the input to StageItem.
type StageItemRequest struct {
	VenueID  string
	Name     string
	Price    float64
	Currency string
	RawText  string
	CallerID string
}

// StageItem records one unverified candidate against a venue. Staged data is
// deliberately accepted loosely — only the venue must exist — because the
// promotion step re-validates everything before anything becomes canonical.
func (s *VenueService) StageItem(ctx context.Context, req StageItemRequest) (*domain.StagingItem, error) {
	if strings.TrimSpace(req.CallerID) == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := repo.GetVenue(ctx, s.DB, req.VenueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	st := &domain.StagingItem{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		RawText:     req.RawText,
		VenueID:     req.VenueID,
		SubmittedBy: req.CallerID,
	}
	if st.Currency == "" {
		st.Currency = "TRY"
	}
	if err := repo.CreateStagingItem(ctx, s.DB, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ListStaging returns one page of staging records for a venue, oldest first,
// so reviewers drain the backlog in submission order.
func (s *VenueService) ListStaging(ctx context.Context, venueID string, offset, limit int) ([]domain.StagingItem, error) {
	if _, err := repo.GetVenue(ctx, s.DB, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return repo.ListStagingByVenue(ctx, s.DB, venueID, offset, limit)
}

// SweepExpiredStaging deletes staging records older than the TTL, in batches,
// until a pass deletes nothing. It returns the total number removed.
func (s *VenueService) SweepExpiredStaging(ctx context.Context, now time.Time) (int64, error) {
	ttl := s.StagingTTL
	if ttl <= 0 {
		ttl = DefaultStagingTTL
	}
	cutoff := now.Add(-ttl)

	var total int64
	for {
		n, err := repo.DeleteExpiredStaging(ctx, s.DB, cutoff, sweepBatch)
		total += n
		if err != nil {
			return total, err
		}
		if n < sweepBatch {
			return total, nil
		}
	}
}
