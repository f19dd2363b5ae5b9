package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
	"github.com/qrmenu/go-catalog-backend/internal/search"
)

// CatalogService serves the read side: item lookup, per-venue browsing, and
// text search. Search prefers the index and falls back to the LIKE query over
// searchable_text when the index is absent or failing, so the endpoint keeps
// answering (with weaker ranking) while the index recovers.
type CatalogService struct {
	DB    *gorm.DB
	Index search.Index
}

// Hit is one search result in API shape, whichever path produced it.
type Hit struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	VenueID   string  `json:"venue_id"`
	VenueName string  `json:"venue_name"`
	City      string  `json:"city"`
	District  string  `json:"district"`
	Score     float64 `json:"score,omitempty"`
}

// GetItem fetches one item by id.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	it, err := repo.GetItem(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	return it, err
}

// ListVenueItems returns one page of a venue's items with the total count.
// An empty status means all statuses.
func (s *CatalogService) ListVenueItems(ctx context.Context, venueID, status string, offset, limit int) ([]domain.Item, int64, error) {
	if _, err := repo.GetVenue(ctx, s.DB, venueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrVenueNotFound
		}
		return nil, 0, err
	}
	total, err := repo.CountItemsByVenue(ctx, s.DB, venueID, status)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListItemsByVenue(ctx, s.DB, venueID, status, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Search returns up to k approved items matching query.
func (s *CatalogService) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if k <= 0 {
		k = 20
	}

	if s.Index != nil {
		results, err := s.Index.Search(ctx, query, k)
		if err == nil {
			hits := make([]Hit, 0, len(results))
			for _, r := range results {
				hits = append(hits, Hit{
					ItemID:    r.Record.ObjectID,
					Name:      r.Record.Name,
					Price:     r.Record.Price,
					Currency:  r.Record.Currency,
					VenueID:   r.Record.VenueID,
					VenueName: r.Record.VenueName,
					City:      r.Record.City,
					District:  r.Record.District,
					Score:     r.Score,
				})
			}
			return hits, nil
		}
		log.Warn().Err(err).Str("query", query).Msg("index search failed, using db fallback")
	}

	items, err := repo.SearchApprovedItems(ctx, s.DB, query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(items))
	for _, it := range items {
		hits = append(hits, Hit{
			ItemID:    it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Currency:  it.Currency,
			VenueID:   it.VenueID,
			VenueName: it.VenueName,
			City:      it.City,
			District:  it.District,
		})
	}
	return hits, nil
}
