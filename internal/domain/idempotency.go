// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency is the ledger entry recording that a promotion with a given
// client-supplied key has been attempted. The key is the primary key, so a
// concurrent retry loses the insert race and is served a deduplicated success.
//
// Entries are never updated. A failed promotion deletes its reservation so an
// identical retry can re-attempt; a committed promotion keeps the entry
// forever, which is what makes a repeated call a no-op.
type Idempotency struct {
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	CallerID  string    `gorm:"type:TEXT NOT NULL"`
	StagingID string    `gorm:"type:TEXT NOT NULL;index"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
