// Package services – PromotionService
//
// This file implements the staging-to-live promotion pipeline: the
// transactional core that converts an unverified staging record into a
// canonical item. A promotion validates its input before touching anything,
// then — inside a single transaction — re-reads the staging record and venue,
// creates or merges the target item (appending price history when the price
// moved), denormalizes venue fields onto the item, advances the venue's sync
// timestamp, and deletes the staging record. All of it commits together or
// not at all.
//
// Exactly-once semantics under retries come from the idempotency ledger: a
// non-empty key is reserved before the transaction, kept forever on success,
// and released on failure so an identical retry can re-attempt cleanly.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
	"github.com/qrmenu/go-catalog-backend/internal/search"
	"github.com/qrmenu/go-catalog-backend/internal/syncer"
)

var promotions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_promotions_total",
		Help: "Promotion attempts by outcome (committed, deduped, failed).",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(promotions)
}

// PromotionService owns the staging-to-live pipeline.
type PromotionService struct {
	DB *gorm.DB

	// Publisher receives one ItemChange per committed promotion. May be nil,
	// in which case derived state is repaired by the next published change.
	Publisher syncer.Publisher
}

// Overrides are the caller-supplied corrections applied on top of the staged
// values. A nil field means "keep the staged value".
type Overrides struct {
	Name     *string
	Price    *float64
	Currency *string
}

// PromoteRequest is the input to Promote.
type PromoteRequest struct {
	CallerID       string
	StagingID      string
	VenueID        string // fallback when the staging record has no venue
	TargetItemID   string // merge target; empty means create a fresh item
	MenuID         string // defaults to the venue id
	IdempotencyKey string // empty means best-effort, no dedup
	Overrides      Overrides
}

// PromoteResult is the success payload of Promote.
type PromoteResult struct {
	ItemID  string `json:"item_id,omitempty"`
	Deduped bool   `json:"deduped"`
}

// Promote runs one promotion.
//
// Failure modes map to the service sentinels: ErrUnauthenticated,
// ErrStagingRequired, ErrInvalidItemData, ErrStagingNotFound,
// ErrVenueUnresolved, ErrVenueNotFound. Any other error is an internal
// failure; in every failure case a key reserved by this call has been
// released again.
//
// Two calls with the same non-empty IdempotencyKey commit at most one
// promotion; the loser of the reservation race (or any later retry of a
// committed call) gets {Deduped: true} without any store write.
func (s *PromotionService) Promote(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	tr := otel.Tracer("services/PromotionService")
	ctx, span := tr.Start(ctx, "Promote",
		trace.WithAttributes(
			attribute.String("staging.id", req.StagingID),
			attribute.String("caller.id", req.CallerID),
		),
	)
	defer span.End()

	if strings.TrimSpace(req.CallerID) == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.StagingID) == "" {
		return nil, ErrStagingRequired
	}

	// Reserve the idempotency key before doing any work. Losing the insert
	// race means another call with this key already ran (or is running):
	// serve the deduplicated success without touching the stores.
	key := strings.TrimSpace(req.IdempotencyKey)
	reserved := false
	if key != "" {
		_, err := repo.ReserveIdempotency(ctx, s.DB, key, req.CallerID, req.StagingID)
		if errors.Is(err, repo.ErrDuplicate) {
			promotions.WithLabelValues("deduped").Inc()
			return &PromoteResult{Deduped: true}, nil
		}
		if err != nil {
			return nil, err
		}
		reserved = true
	}

	result, err := s.promote(ctx, req)
	if err != nil {
		if reserved {
			// A dangling reservation would turn every retry into a false
			// dedup hit. Releasing may itself fail; the original error wins.
			if relErr := repo.ReleaseIdempotency(ctx, s.DB, key); relErr != nil {
				span.RecordError(relErr)
			}
		}
		promotions.WithLabelValues("failed").Inc()
		return nil, err
	}
	promotions.WithLabelValues("committed").Inc()
	return result, nil
}

// promote performs the validated read-modify-write. The pre-transaction reads
// exist only to fail fast with precise errors; everything the transaction
// writes is derived from state re-read inside it.
func (s *PromotionService) promote(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	staging, err := repo.GetStagingItem(ctx, s.DB, req.StagingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStagingNotFound
		}
		return nil, err
	}

	venueID := staging.VenueID
	if venueID == "" {
		venueID = strings.TrimSpace(req.VenueID)
	}
	if venueID == "" {
		return nil, ErrVenueUnresolved
	}
	if _, err := repo.GetVenue(ctx, s.DB, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	// Validate the final payload before the transaction starts, so every
	// validation failure is side-effect free.
	finalName, finalPrice, _ := applyOverrides(staging, req.Overrides)
	if strings.TrimSpace(finalName) == "" || finalPrice <= 0 {
		return nil, ErrInvalidItemData
	}

	var (
		before *domain.Item
		after  *domain.Item
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-read staging and venue inside the transaction: a concurrent
		// promotion may have consumed the record since the check above.
		st, err := repo.GetStagingItem(ctx, tx, req.StagingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStagingNotFound
			}
			return err
		}
		venue, err := repo.GetVenue(ctx, tx, venueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVenueNotFound
			}
			return err
		}

		name, price, currency := applyOverrides(st, req.Overrides)
		if strings.TrimSpace(name) == "" || price <= 0 {
			return ErrInvalidItemData
		}

		menuID := req.MenuID
		if menuID == "" {
			menuID = venue.ID
		}

		candidate := domain.Item{
			Name:           name,
			Price:          price,
			Currency:       currency,
			VenueID:        venue.ID,
			MenuID:         menuID,
			VenueName:      venue.Name,
			City:           venue.City,
			District:       venue.District,
			SearchableText: search.Searchable(name, venue.Name, venue.City, venue.District),
			ContributedBy:  req.CallerID,
			Status:         domain.StatusPending,
			ReportCount:    0,
		}

		if req.TargetItemID != "" {
			target, err := repo.GetItem(ctx, tx, req.TargetItemID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// First write against a client-chosen id: create it there,
				// seeding history from the staging record's own history.
				candidate.ID = req.TargetItemID
				candidate.PreviousPrices = st.PreviousPrices
				if err := repo.CreateItem(ctx, tx, &candidate); err != nil {
					return err
				}
				after = &candidate
			case err != nil:
				return err
			default:
				before = cloneItem(target)
				// History compares the staged price against the current item
				// price — deliberately not the override price being written.
				if st.Price != target.Price {
					target.PreviousPrices = append(target.PreviousPrices, domain.PriceEntry{
						Price: target.Price,
						Date:  target.UpdatedAt,
					})
					if n := len(target.PreviousPrices); n > domain.MaxPriceHistory {
						target.PreviousPrices = target.PreviousPrices[n-domain.MaxPriceHistory:]
					}
				}
				mergeCandidate(target, candidate)
				if err := repo.SaveItem(ctx, tx, target); err != nil {
					return err
				}
				after = target
			}
		} else {
			candidate.ID = uuid.NewString()
			candidate.PreviousPrices = st.PreviousPrices
			if err := repo.CreateItem(ctx, tx, &candidate); err != nil {
				return err
			}
			after = &candidate
		}

		if err := repo.TouchVenueSync(ctx, tx, venue.ID, time.Now().UTC()); err != nil {
			return err
		}
		return repo.DeleteStagingItem(ctx, tx, st.ID)
	})
	if err != nil {
		return nil, err
	}

	if s.Publisher != nil {
		s.Publisher.Publish(syncer.ItemChange{Before: before, After: cloneItem(after)})
	}
	return &PromoteResult{ItemID: after.ID}, nil
}

// applyOverrides resolves the final name/price/currency: override wins over
// the staged value, and the currency falls back to TRY when both are empty.
func applyOverrides(st *domain.StagingItem, ov Overrides) (name string, price float64, currency string) {
	name = st.Name
	if ov.Name != nil && strings.TrimSpace(*ov.Name) != "" {
		name = *ov.Name
	}
	price = st.Price
	if ov.Price != nil {
		price = *ov.Price
	}
	currency = st.Currency
	if ov.Currency != nil && *ov.Currency != "" {
		currency = *ov.Currency
	}
	if currency == "" {
		currency = "TRY"
	}
	return name, price, currency
}

// mergeCandidate overwrites the target's promoted fields while keeping its
// identity, timestamps, and (already adjusted) price history. Moderation
// state resets to pending: the merged content is a new, unreviewed claim.
func mergeCandidate(target *domain.Item, c domain.Item) {
	target.Name = c.Name
	target.Price = c.Price
	target.Currency = c.Currency
	target.VenueID = c.VenueID
	target.MenuID = c.MenuID
	target.VenueName = c.VenueName
	target.City = c.City
	target.District = c.District
	target.SearchableText = c.SearchableText
	target.ContributedBy = c.ContributedBy
	target.Status = c.Status
	target.ReportCount = c.ReportCount
}

// cloneItem returns a shallow copy with its own price-history slice, so the
// published before/after states cannot alias later mutations.
func cloneItem(it *domain.Item) *domain.Item {
	if it == nil {
		return nil
	}
	cp := *it
	cp.PreviousPrices = append([]domain.PriceEntry(nil), it.PreviousPrices...)
	return &cp
}
