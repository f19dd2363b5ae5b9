// Package domain defines the persistence models for venues, staged menu
// items, canonical items, and moderation reports. These types are mapped
// with GORM and form the core data layer of the catalog application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Item moderation statuses. An item enters the catalog as StatusPending and
// only ever reaches the search index while StatusApproved.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFlagged  = "flagged"
)

// Report reasons accepted from callers. Anything else is rejected at the
// service layer before any write happens.
const (
	ReportWrongPrice    = "wrong_price"
	ReportSpam          = "spam"
	ReportInappropriate = "inappropriate"
	ReportDuplicate     = "duplicate"
	ReportOther         = "other"
)

// PriceEntry is one historical price point of an item. Entries are ordered
// most-recent-last and capped (see MaxPriceHistory).
type PriceEntry struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// MaxPriceHistory bounds the previous_prices list on an item; the oldest
// entries are evicted first.
const MaxPriceHistory = 50

// Venue represents the parent entity (restaurant) items belong to. It carries
// denormalized aggregate fields that are never written directly by clients:
//   - ItemCount is recomputed by the syncer as the number of approved items.
//   - LastSyncedAt advances on every successful promotion against the venue.
type Venue struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	Name          string         `json:"name"           gorm:"type:varchar(255);not null"`
	City          string         `json:"city"           gorm:"type:varchar(128);index"`
	District      string         `json:"district"       gorm:"type:varchar(128)"`
	Address       string         `json:"address"        gorm:"type:varchar(512)"`
	ItemCount     int64          `json:"item_count"     gorm:"not null;default:0"`
	LastSyncedAt  *time.Time     `json:"last_synced_at"`
	ContributedBy string         `json:"contributed_by" gorm:"type:varchar(64);index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Venue.
func (Venue) TableName() string { return "venues" }

// StagingItem is an unverified candidate produced by ingestion (OCR or manual
// entry). It is never mutated: a staging row is consumed by a successful
// promotion or deleted by the expiry sweep.
type StagingItem struct {
	ID             string       `json:"id"              gorm:"type:char(36);primaryKey"`
	Name           string       `json:"name"            gorm:"type:varchar(255);not null"`
	Price          float64      `json:"price"           gorm:"not null"`
	Currency       string       `json:"currency"        gorm:"type:varchar(8);not null;default:'TRY'"`
	RawText        string       `json:"raw_text"        gorm:"type:text"`
	VenueID        string       `json:"venue_id"        gorm:"type:char(36);not null;index:idx_staging_venue"`
	SubmittedBy    string       `json:"submitted_by"    gorm:"type:varchar(64)"`
	PreviousPrices []PriceEntry `json:"previous_prices" gorm:"serializer:json"`
	CreatedAt      time.Time    `json:"created_at"      gorm:"index"`
}

// TableName returns the database table name for StagingItem.
func (StagingItem) TableName() string { return "items_staging" }

// Item is a canonical menu item owned by exactly one venue. Venue name, city
// and district are denormalized onto the row at promotion time, together with
// a lowercase searchable_text used for fallback text search.
//
// Invariants:
//   - Status == approved if and only if the item is present in the search
//     index (kept true by the syncer, best effort).
//   - PreviousPrices grows only when a promotion changes the numeric price of
//     an existing item, and never exceeds MaxPriceHistory entries.
type Item struct {
	ID             string       `json:"id"               gorm:"type:char(36);primaryKey"`
	Name           string       `json:"name"             gorm:"type:varchar(255);not null"`
	Price          float64      `json:"price"            gorm:"not null"`
	Currency       string       `json:"currency"         gorm:"type:varchar(8);not null;default:'TRY'"`
	VenueID        string       `json:"venue_id"         gorm:"type:char(36);not null;index:idx_items_venue_status,priority:1"`
	MenuID         string       `json:"menu_id"          gorm:"type:char(36)"`
	VenueName      string       `json:"venue_name"       gorm:"type:varchar(255)"`
	City           string       `json:"city"             gorm:"type:varchar(128)"`
	District       string       `json:"district"         gorm:"type:varchar(128)"`
	SearchableText string       `json:"searchable_text"  gorm:"type:text"`
	ContributedBy  string       `json:"contributed_by"   gorm:"type:varchar(64);index"`
	Status         string       `json:"status"           gorm:"type:varchar(16);not null;default:'pending';index:idx_items_venue_status,priority:2;check:status IN ('pending','approved','rejected','flagged')"`
	ReportCount    int          `json:"report_count"     gorm:"not null;default:0"`
	PreviousPrices []PriceEntry `json:"previous_prices"  gorm:"serializer:json"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	ApprovedBy      string     `json:"approved_by,omitempty"      gorm:"type:varchar(64)"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty"      gorm:"type:varchar(64)"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:varchar(512)"`
}

// TableName returns the database table name for Item.
func (Item) TableName() string { return "items" }

// Report records one user reporting one item. A reporter may file at most one
// report per item; the unique index backs the service-level pre-check.
type Report struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ItemID     string    `json:"item_id"     gorm:"type:char(36);not null;index;uniqueIndex:ux_report_item_user"`
	ReportedBy string    `json:"reported_by" gorm:"type:varchar(64);not null;uniqueIndex:ux_report_item_user"`
	Reason     string    `json:"reason"      gorm:"type:varchar(32);not null"`
	Details    string    `json:"details"     gorm:"type:varchar(1024)"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for Report.
func (Report) TableName() string { return "item_reports" }

// User is the profile document backing the role provider. Only the role is
// load-bearing for this service; moderation endpoints require RoleModerator
// or RoleAdmin.
type User struct {
	ID          string    `json:"id"           gorm:"type:varchar(64);primaryKey"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255)"`
	Role        string    `json:"role"         gorm:"type:varchar(32);not null;default:'user'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Roles understood by the role provider.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ValidReportReason reports whether reason is one of the accepted enum values.
func ValidReportReason(reason string) bool {
	switch reason {
	case ReportWrongPrice, ReportSpam, ReportInappropriate, ReportDuplicate, ReportOther:
		return true
	}
	return false
}

// ElevatedRole reports whether role may approve or reject items.
func ElevatedRole(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

// ValidRole reports whether role is an assignable role value.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
