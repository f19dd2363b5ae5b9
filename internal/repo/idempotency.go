// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// ledger used to guarantee exactly-once promotion under client retries.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
)

// ErrDuplicate indicates that a ledger entry already exists for the given
// key, i.e. a promotion with this key has been attempted (and, unless the
// attempt later released the key, committed).
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the ledger entry for key or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, key string) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).Where("key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// ReserveIdempotency inserts a reservation for key tagged with the caller and
// target staging id. It returns ErrDuplicate when an entry for key already
// exists, in which case the caller must serve a deduplicated success without
// re-running the mutation.
func ReserveIdempotency(ctx context.Context, db *gorm.DB, key, callerID, stagingID string) (*domain.Idempotency, error) {
	rec := &domain.Idempotency{
		Key:       key,
		CallerID:  callerID,
		StagingID: stagingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// ReleaseIdempotency deletes the reservation for key. It must be called when
// a promotion fails after reserving, so a retry with the same key is not
// permanently blocked by a never-committed entry. Deleting a missing key is
// not an error.
func ReleaseIdempotency(ctx context.Context, db *gorm.DB, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return db.WithContext(ctx).Where("key = ?", key).Delete(&domain.Idempotency{}).Error
}
