// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the StagingItem
// model: the transient collection of unverified candidates awaiting promotion
// or expiry.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

// CreateStagingItem inserts a candidate row with a fresh UUID and UTC
// timestamp. Staging rows are immutable after insertion.
func CreateStagingItem(ctx context.Context, db *gorm.DB, s *domain.StagingItem) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(s).Error
}

// GetStagingItem fetches a staging row by id, or ErrNotFound if missing.
func GetStagingItem(ctx context.Context, db *gorm.DB, id string) (*domain.StagingItem, error) {
	var s domain.StagingItem
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStagingByVenue returns staging rows for a venue, oldest first, so
// reviewers drain the backlog in arrival order.
func ListStagingByVenue(ctx context.Context, db *gorm.DB, venueID string, offset, limit int) ([]domain.StagingItem, error) {
	var out []domain.StagingItem
	err := db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteStagingItem removes a staging row by id. Returns ErrNotFound when no
// row was deleted, so the promotion transaction can detect a concurrent
// consumption of the same candidate.
func DeleteStagingItem(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.StagingItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteExpiredStaging removes up to limit staging rows created before
// cutoff and reports how many were deleted. The sweeper calls this in
// batches until it returns 0.
func DeleteExpiredStaging(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 500
	}
	res := db.WithContext(ctx).
		Where("id IN (?)", db.Model(&domain.StagingItem{}).
			Select("id").
			Where("created_at < ?", cutoff).
			Limit(limit)).
		Delete(&domain.StagingItem{})
	return res.RowsAffected, res.Error
}
