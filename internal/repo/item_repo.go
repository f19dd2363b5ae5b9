// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Item model:
// the authoritative collection of canonical menu items.
//
// Writes that participate in the promotion or moderation transactions take
// the transaction-bound *gorm.DB handle; none of them publish sync events —
// that is the service layer's job once the transaction has committed.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

// GetItem fetches an item by id, or ErrNotFound if missing.
func GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error) {
	var it domain.Item
	if err := db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem inserts a new item row. Timestamps are set to UTC now; the
// caller is responsible for every other field, including the id.
func CreateItem(ctx context.Context, db *gorm.DB, it *domain.Item) error {
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now
	return db.WithContext(ctx).Create(it).Error
}

// SaveItem writes the full item row back. Used by the promotion transaction
// after merging the candidate payload into an existing item.
func SaveItem(ctx context.Context, db *gorm.DB, it *domain.Item) error {
	it.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(it).Error
}

// ListItemsByVenue returns items for a venue, optionally filtered by status,
// newest first.
func ListItemsByVenue(ctx context.Context, db *gorm.DB, venueID, status string, offset, limit int) ([]domain.Item, error) {
	q := db.WithContext(ctx).Where("venue_id = ?", venueID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Item
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// CountItemsByVenue returns the number of items for a venue, optionally
// filtered by status.
func CountItemsByVenue(ctx context.Context, db *gorm.DB, venueID, status string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Item{}).Where("venue_id = ?", venueID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// CountApprovedItems returns the exact number of approved items owned by the
// venue. The syncer uses this full recount (rather than increments) so the
// derived counter self-heals under duplicated or reordered event delivery.
func CountApprovedItems(ctx context.Context, db *gorm.DB, venueID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("venue_id = ? AND status = ?", venueID, domain.StatusApproved).
		Count(&total).Error
	return total, err
}

// ListApprovedItems pages through approved items in id order. Used to warm
// the search index at boot.
func ListApprovedItems(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusApproved).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SearchApprovedItems is the fallback text search over the denormalized
// searchable_text column. Every query term must match; only approved items
// are returned. The primary search path is the index — this query backs it
// when the index is unavailable or cold.
func SearchApprovedItems(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Item, error) {
	if limit <= 0 {
		limit = 20
	}
	q := db.WithContext(ctx).Model(&domain.Item{}).Where("status = ?", domain.StatusApproved)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		q = q.Where("searchable_text LIKE ?", "%"+term+"%")
	}
	var out []domain.Item
	err := q.Order("updated_at desc").Limit(limit).Find(&out).Error
	return out, err
}
