// Handler wiring and shared helpers.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate service sentinels into HTTP responses. All business rules
// (idempotency, moderation gating, the report threshold) live in services.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/services"
	"github.com/qrmenu/go-catalog-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// PromotionService defines the staging-to-live promotion operation consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PromotionService interface {
	// Promote converts one staging record into a canonical item.
	Promote(ctx context.Context, req services.PromoteRequest) (*services.PromoteResult, error)
}

// ModerationService defines item status transitions and report intake.
type ModerationService interface {
	// Approve marks an item approved on behalf of the caller.
	Approve(ctx context.Context, callerID, itemID string) error
	// Reject marks an item rejected with an optional reason.
	Reject(ctx context.Context, callerID, itemID, reason string) error
	// Report files one report against an item.
	Report(ctx context.Context, req services.ReportRequest) (*services.ReportResult, error)
}

// VenueService defines venue CRUD and staging intake.
type VenueService interface {
	CreateVenue(ctx context.Context, req services.CreateVenueRequest) (*domain.Venue, error)
	GetVenue(ctx context.Context, id string) (*domain.Venue, error)
	ListVenues(ctx context.Context, offset, limit int) ([]domain.Venue, int64, error)
	StageItem(ctx context.Context, req services.StageItemRequest) (*domain.StagingItem, error)
	ListStaging(ctx context.Context, venueID string, offset, limit int) ([]domain.StagingItem, error)
}

// CatalogService defines the read side: lookup, browse, search.
type CatalogService interface {
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListVenueItems(ctx context.Context, venueID, status string, offset, limit int) ([]domain.Item, int64, error)
	Search(ctx context.Context, query string, k int) ([]services.Hit, error)
}

// RoleService defines role assignment.
type RoleService interface {
	SetRole(ctx context.Context, callerID, targetID, role string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for promotion, moderation, venues, and
// search. It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	promoSvc   PromotionService
	modSvc     ModerationService
	venueSvc   VenueService
	catalogSvc CatalogService
	roleSvc    RoleService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(promoSvc PromotionService, modSvc ModerationService, venueSvc VenueService, catalogSvc CatalogService, roleSvc RoleService) *Handlers {
	return &Handlers{
		promoSvc:   promoSvc,
		modSvc:     modSvc,
		venueSvc:   venueSvc,
		catalogSvc: catalogSvc,
		roleSvc:    roleSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-User-ID" header (tests use
// it). An empty result means the request is unauthenticated; services reject
// those with ErrUnauthenticated.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginationFor derives the metadata block from a page request and total.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
