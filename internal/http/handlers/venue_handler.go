// Venue HTTP handlers.
//
// This file exposes REST endpoints for venue resources and staging intake:
//   - POST   /venues                 (create)
//   - GET    /venues                 (list, paginated, ETag support)
//   - GET    /venues/{id}            (fetch)
//   - POST   /venues/{id}/staging    (stage an unverified candidate)
//   - GET    /venues/{id}/staging    (review backlog, oldest first)
//   - GET    /venues/{id}/items      (browse items, paginated, ETag support)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
	"github.com/qrmenu/go-catalog-backend/internal/services"
)

//
// DTOs
//

// CreateVenueRequest is the JSON payload for creating a venue.
type CreateVenueRequest struct {
	// ID optionally pins the venue id; generated when empty.
	ID string `json:"id,omitempty"`
	// Name is the venue display name (1–255 chars).
	Name string `json:"name" binding:"required,min=1,max=255" example:"Çiya Sofrası"`
	// City the venue is located in.
	City string `json:"city,omitempty" example:"İstanbul"`
	// District within the city.
	District string `json:"district,omitempty" example:"Kadıköy"`
	// Address free-text street address.
	Address string `json:"address,omitempty" binding:"max=512"`
}

// StageItemRequest is the JSON payload for staging a menu item candidate.
type StageItemRequest struct {
	// Name of the item as read from the menu; may be corrected at promotion.
	Name string `json:"name" binding:"required,min=1,max=255" example:"İçli Köfte"`
	// Price as read from the menu.
	Price float64 `json:"price" binding:"required,gt=0" example:"95"`
	// Currency defaults to TRY.
	Currency string `json:"currency,omitempty" binding:"max=8" example:"TRY"`
	// RawText is the OCR fragment the candidate was extracted from.
	RawText string `json:"raw_text,omitempty"`
}

// ListVenuesResponse wraps a page of venues and pagination information.
type ListVenuesResponse struct {
	Venues     []domain.Venue `json:"venues"`
	Pagination Pagination     `json:"pagination"`
}

// ListVenueItemsResponse wraps a page of a venue's items.
type ListVenueItemsResponse struct {
	Items      []domain.Item `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// ListStagingResponse wraps a venue's staging backlog page.
type ListStagingResponse struct {
	Staging []domain.StagingItem `json:"staging"`
}

//
// Handlers
//

// CreateVenue godoc
// @ID          createVenue
// @Summary     Create a venue
// @Description Creates a venue and returns the resource. Name, city, and district are stored title-cased.
// @Tags        Venues
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller user ID"  example(user123)
// @Param       body       body    handlers.CreateVenueRequest  true  "Create venue payload"
//
// @Success     201  {object}  domain.Venue
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing caller identity"
// @Failure     409  {object}  handlers.ErrorResponse  "Venue id already taken"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /venues [post]
func (h *Handlers) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	v, err := h.venueSvc.CreateVenue(c.Request.Context(), services.CreateVenueRequest{
		ID:       req.ID,
		Name:     req.Name,
		City:     req.City,
		District: req.District,
		Address:  req.Address,
		CallerID: userID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		case errors.Is(err, services.ErrVenueNameRequired):
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "venue name is required")
		case errors.Is(err, services.ErrVenueExists):
			fail(c, http.StatusConflict, ErrCodeConflict, "venue already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, v)
}

// ListVenues godoc
// @ID          listVenues
// @Summary     List venues (paginated)
// @Description Returns a page of venues. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Venues
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListVenuesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /venues [get]
func (h *Handlers) ListVenues(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db := h.venueDB(); db != nil {
		count, maxTS, err := repo.VenuesStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"venues:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	venues, total, err := h.venueSvc.ListVenues(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListVenuesResponse{
		Venues:     venues,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// GetVenue godoc
// @ID          getVenue
// @Summary     Fetch a venue
// @Description Returns one venue, including its approved item count and last sync time.
// @Tags        Venues
// @Produce     json
//
// @Param       id  path  string  true  "Venue ID"
//
// @Success     200  {object} domain.Venue
// @Failure     404  {object} handlers.ErrorResponse "Venue not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /venues/{id} [get]
func (h *Handlers) GetVenue(c *gin.Context) {
	v, err := h.venueSvc.GetVenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, v)
}

// StageItem godoc
// @ID          stageItem
// @Summary     Stage a menu item candidate
// @Description Records an unverified candidate against a venue. Staged data is validated loosely; the promotion step re-validates before anything goes live. Unpromoted candidates expire.
// @Tags        Staging
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller user ID"  example(user123)
// @Param       id         path    string  true  "Venue ID"
// @Param       body       body    handlers.StageItemRequest  true "Candidate payload"
//
// @Success     201  {object} domain.StagingItem
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Missing caller identity"
// @Failure     404  {object} handlers.ErrorResponse "Venue not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /venues/{id}/staging [post]
func (h *Handlers) StageItem(c *gin.Context) {
	var req StageItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	st, err := h.venueSvc.StageItem(c.Request.Context(), services.StageItemRequest{
		VenueID:  c.Param("id"),
		Name:     req.Name,
		Price:    req.Price,
		Currency: req.Currency,
		RawText:  req.RawText,
		CallerID: userID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		case errors.Is(err, services.ErrVenueNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, st)
}

// ListStaging godoc
// @ID          listStaging
// @Summary     List a venue's staging backlog
// @Description Returns staged candidates for a venue, oldest first, so reviewers drain the backlog in submission order.
// @Tags        Staging
// @Produce     json
//
// @Param       id         path   string  true  "Venue ID"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListStagingResponse
// @Failure     404  {object} handlers.ErrorResponse "Venue not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /venues/{id}/staging [get]
func (h *Handlers) ListStaging(c *gin.Context) {
	page, pageSize := clampPagination(c)
	staging, err := h.venueSvc.ListStaging(c.Request.Context(), c.Param("id"), (page-1)*pageSize, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListStagingResponse{Staging: staging})
}

// ListVenueItems godoc
// @ID          listVenueItems
// @Summary     Browse a venue's items (paginated)
// @Description Returns a page of the venue's items, newest first, optionally filtered by status. Supports weak ETag via If-None-Match.
// @Tags        Items
// @Produce     json
//
// @Param       id             path    string  true  "Venue ID"
// @Param       status         query   string  false "Filter by status"  Enums(pending, approved, rejected, flagged)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListVenueItemsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Unknown status filter"
// @Failure     404  {object} handlers.ErrorResponse "Venue not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /venues/{id}/items [get]
func (h *Handlers) ListVenueItems(c *gin.Context) {
	ctx := c.Request.Context()
	venueID := c.Param("id")
	page, pageSize := clampPagination(c)

	status := strings.TrimSpace(c.Query("status"))
	switch status {
	case "", domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusFlagged:
	default:
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "unknown status filter")
		return
	}

	// ETag pre-check (best effort).
	if db := h.catalogDB(); db != nil {
		count, maxTS, err := repo.VenueItemsStats(ctx, db, venueID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"items:%s:%s:%d:%d"`, venueID, status, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.catalogSvc.ListVenueItems(ctx, venueID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrVenueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListVenueItemsResponse{
		Items:      items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// venueDB exposes the concrete DB handle for the ETag pre-checks when the
// venue service is the real implementation (tests may inject fakes).
func (h *Handlers) venueDB() *gorm.DB {
	if svc, ok := h.venueSvc.(*services.VenueService); ok {
		return svc.DB
	}
	return nil
}

// catalogDB is venueDB's counterpart for the catalog read side.
func (h *Handlers) catalogDB() *gorm.DB {
	if svc, ok := h.catalogSvc.(*services.CatalogService); ok {
		return svc.DB
	}
	return nil
}
