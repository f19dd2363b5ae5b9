// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Venue model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a venue is not found, functions return ErrNotFound
//     (an alias of gorm.ErrRecordNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateVenue inserts a new venue row. The caller supplies the ID (a place id
// or a fresh UUID) so the same external venue can never be created twice.
func CreateVenue(ctx context.Context, db *gorm.DB, v *domain.Venue) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	return db.WithContext(ctx).Create(v).Error
}

// GetVenue fetches a venue by id, or ErrNotFound if missing.
func GetVenue(ctx context.Context, db *gorm.DB, id string) (*domain.Venue, error) {
	var v domain.Venue
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVenuesPage returns a paginated slice of venues ordered by creation time
// descending. Use CountVenues to obtain the total for pagination metadata.
func ListVenuesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Venue, error) {
	var out []domain.Venue
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountVenues returns the total number of venues.
func CountVenues(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Venue{}).Count(&total).Error
	return total, err
}

// TouchVenueSync advances the venue's last_synced_at to now. If no rows are
// affected (venue missing), it returns ErrNotFound. Intended to run inside
// the promotion transaction.
func TouchVenueSync(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Venue{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_synced_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetVenueItemCount overwrites the venue's derived approved-item counter.
// Only the syncer calls this; clients never write item_count directly.
func SetVenueItemCount(ctx context.Context, db *gorm.DB, id string, count int64) error {
	return db.WithContext(ctx).
		Model(&domain.Venue{}).
		Where("id = ?", id).
		Updates(map[string]any{"item_count": count, "updated_at": time.Now().UTC()}).Error
}
