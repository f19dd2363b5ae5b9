// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for moderation
// reports and for the user profiles backing the role provider.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

// HasReport reports whether reporter has already filed a report for itemID.
// The service layer calls this before mutating anything so the duplicate case
// is side-effect free; the unique index on (item_id, reported_by) remains the
// backstop for the insert race.
func HasReport(ctx context.Context, db *gorm.DB, itemID, reporter string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("item_id = ? AND reported_by = ?", itemID, reporter).
		Count(&n).Error
	return n > 0, err
}

// CreateReport inserts a report row with a fresh UUID and UTC timestamp.
func CreateReport(ctx context.Context, db *gorm.DB, r *domain.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(r).Error
}

// CountReports returns the number of report rows filed against itemID.
func CountReports(ctx context.Context, db *gorm.DB, itemID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("item_id = ?", itemID).
		Count(&n).Error
	return n, err
}

// GetUser fetches a user profile by id, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUserRole creates the user profile if absent and sets its role.
func UpsertUserRole(ctx context.Context, db *gorm.DB, id, role string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": role, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&domain.User{
		ID:        id,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
