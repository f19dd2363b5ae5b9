// Search and item read handlers.
//
//   - GET /search          (approved items only; index with DB fallback)
//   - GET /items/{id}      (fetch one item, any status)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qrmenu/go-catalog-backend/internal/services"
	"github.com/qrmenu/go-catalog-backend/internal/utils"
)

// SearchResponse wraps the ranked hits for a query.
type SearchResponse struct {
	Query string         `json:"query"`
	Hits  []services.Hit `json:"hits"`
}

// Search godoc
// @ID          searchItems
// @Summary     Search approved items
// @Description Full-text search over approved items. Served from the search index when available, falling back to a database scan with weaker ranking.
// @Tags        Search
// @Produce     json
//
// @Param       q      query  string  true  "Query text"       example(adana kebap kadıköy)
// @Param       limit  query  int     false "Max hits (1–100)" default(20)
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing query"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /search [get]
func (h *Handlers) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "query parameter q is required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	hits, err := h.catalogSvc.Search(c.Request.Context(), query, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSearchFailed, err.Error())
		return
	}
	if hits == nil {
		hits = []services.Hit{}
	}
	ok(c, http.StatusOK, SearchResponse{Query: query, Hits: hits})
}

// GetItem godoc
// @ID          getItem
// @Summary     Fetch an item
// @Description Returns one catalog item by id, regardless of moderation status.
// @Tags        Items
// @Produce     json
//
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Item
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items/{id} [get]
func (h *Handlers) GetItem(c *gin.Context) {
	it, err := h.catalogSvc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, it)
}
