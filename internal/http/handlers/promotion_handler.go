// Promotion HTTP handler.
//
// This file exposes the pipeline's write endpoint:
//   - POST /promotions   (promote a staging record into the live catalog)
//
// The handler is transport-thin: it binds the JSON payload, resolves the
// caller and the Idempotency-Key header, and maps the service sentinels onto
// the error envelope. The atomicity and dedup guarantees live in the service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qrmenu/go-catalog-backend/internal/http/middleware"
	"github.com/qrmenu/go-catalog-backend/internal/services"
)

// PromoteRequest is the JSON payload for promoting a staging record.
type PromoteRequest struct {
	// StagingID names the staging record to consume.
	StagingID string `json:"staging_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// VenueID is a fallback when the staging record carries no venue.
	VenueID string `json:"venue_id,omitempty" example:"9f1c2a77-0b9e-4e49-9e44-000000000001"`
	// ItemID optionally names an existing item to merge into.
	ItemID string `json:"item_id,omitempty"`
	// MenuID optionally places the item on a menu; defaults to the venue id.
	MenuID string `json:"menu_id,omitempty"`
	// Name overrides the staged item name when non-empty.
	Name *string `json:"name,omitempty" example:"Adana Kebap"`
	// Price overrides the staged price when present.
	Price *float64 `json:"price,omitempty" example:"185.50"`
	// Currency overrides the staged currency when non-empty.
	Currency *string `json:"currency,omitempty" example:"TRY"`
}

// Promote godoc
// @ID          promoteStagingItem
// @Summary     Promote a staging item
// @Description Converts a staged candidate into a live catalog item (create or merge), atomically. Retries carrying the same Idempotency-Key are deduplicated.
// @Tags        Promotions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "Caller user ID"  example(user123)
// @Param       Idempotency-Key  header  string  false "Dedup key for safe retries"
// @Param       body             body    handlers.PromoteRequest  true  "Promotion payload"
//
// @Success     200  {object}  services.PromoteResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing caller identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Staging record or venue not found"
// @Failure     422  {object}  handlers.ErrorResponse  "Invalid final item data"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /promotions [post]
func (h *Handlers) Promote(c *gin.Context) {
	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)

	res, err := h.promoSvc.Promote(c.Request.Context(), services.PromoteRequest{
		CallerID:       userID(c),
		StagingID:      req.StagingID,
		VenueID:        req.VenueID,
		TargetItemID:   req.ItemID,
		MenuID:         req.MenuID,
		IdempotencyKey: key,
		Overrides: services.Overrides{
			Name:     req.Name,
			Price:    req.Price,
			Currency: req.Currency,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		case errors.Is(err, services.ErrStagingRequired):
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "staging_id is required")
		case errors.Is(err, services.ErrStagingNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "staging record not found")
		case errors.Is(err, services.ErrVenueUnresolved):
			fail(c, http.StatusBadRequest, ErrCodeFailedPrecondition, "staging record names no venue and none was supplied")
		case errors.Is(err, services.ErrVenueNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "venue not found")
		case errors.Is(err, services.ErrInvalidItemData):
			fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidArgument, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodePromoteFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}
