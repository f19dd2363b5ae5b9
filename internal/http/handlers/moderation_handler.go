// Moderation HTTP handlers.
//
// This file exposes the moderation surface:
//   - POST /items/{id}/approve    (moderator/admin)
//   - POST /items/{id}/reject     (moderator/admin)
//   - POST /items/{id}/reports    (any authenticated user)
//   - PUT  /users/{id}/role       (admin, or self-demotion)
//
// Role gating happens in the service layer; handlers only translate the
// resulting sentinels into status codes.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qrmenu/go-catalog-backend/internal/services"
)

// RejectRequest is the JSON payload for rejecting an item.
type RejectRequest struct {
	// Reason is an optional free-text explanation shown to the contributor.
	Reason string `json:"reason,omitempty" binding:"max=512" example:"menu photo unreadable"`
}

// ReportRequest is the JSON payload for reporting an item.
type ReportRequest struct {
	// Reason must be one of: wrong_price, spam, inappropriate, duplicate, other.
	Reason string `json:"reason" binding:"required" example:"wrong_price"`
	// Details optionally elaborates on the reason.
	Details string `json:"details,omitempty" binding:"max=1024"`
}

// SetRoleRequest is the JSON payload for assigning a user role.
type SetRoleRequest struct {
	// Role must be one of: user, moderator, admin.
	Role string `json:"role" binding:"required" example:"moderator"`
}

// ApproveItem godoc
// @ID          approveItem
// @Summary     Approve an item
// @Description Marks the item approved. Requires moderator or admin role. The search index and the venue counter follow asynchronously.
// @Tags        Moderation
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller user ID"  example(mod42)
// @Param       id         path    string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Missing caller identity"
// @Failure     403  {object} handlers.ErrorResponse "Caller lacks moderator role"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items/{id}/approve [post]
func (h *Handlers) ApproveItem(c *gin.Context) {
	err := h.modSvc.Approve(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failModeration(c, err)
		return
	}
	noContent(c)
}

// RejectItem godoc
// @ID          rejectItem
// @Summary     Reject an item
// @Description Marks the item rejected with an optional reason. Requires moderator or admin role.
// @Tags        Moderation
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller user ID"  example(mod42)
// @Param       id         path    string  true  "Item ID (UUID)"  format(uuid)
// @Param       body       body    handlers.RejectRequest  false "Rejection payload"
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Missing caller identity"
// @Failure     403  {object} handlers.ErrorResponse "Caller lacks moderator role"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items/{id}/reject [post]
func (h *Handlers) RejectItem(c *gin.Context) {
	var req RejectRequest
	// Body is optional; a missing or empty body means no reason.
	_ = c.ShouldBindJSON(&req)

	err := h.modSvc.Reject(c.Request.Context(), userID(c), c.Param("id"), req.Reason)
	if err != nil {
		failModeration(c, err)
		return
	}
	noContent(c)
}

// ReportItem godoc
// @ID          reportItem
// @Summary     Report an item
// @Description Files one report against the item. A user may report an item once; reaching the report threshold flags the item and removes it from search.
// @Tags        Moderation
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller user ID"  example(user123)
// @Param       id         path    string  true  "Item ID (UUID)"  format(uuid)
// @Param       body       body    handlers.ReportRequest  true "Report payload"
//
// @Success     200  {object} services.ReportResult
// @Failure     400  {object} handlers.ErrorResponse "Unknown report reason"
// @Failure     401  {object} handlers.ErrorResponse "Missing caller identity"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Failure     409  {object} handlers.ErrorResponse "Already reported by this user"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /items/{id}/reports [post]
func (h *Handlers) ReportItem(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.modSvc.Report(c.Request.Context(), services.ReportRequest{
		CallerID: userID(c),
		ItemID:   c.Param("id"),
		Reason:   strings.TrimSpace(req.Reason),
		Details:  req.Details,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		case errors.Is(err, services.ErrInvalidReason):
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "reason must be one of wrong_price, spam, inappropriate, duplicate, other")
		case errors.Is(err, services.ErrItemNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
		case errors.Is(err, services.ErrDuplicateReport):
			fail(c, http.StatusConflict, ErrCodeDuplicateReport, "item already reported by this user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// SetUserRole godoc
// @ID          setUserRole
// @Summary     Assign a user role
// @Description Sets the target user's role. Admins may assign any role; other callers may only reset their own role to "user".
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller user ID"  example(admin1)
// @Param       id         path    string  true  "Target user ID"
// @Param       body       body    handlers.SetRoleRequest  true "Role payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Unknown role"
// @Failure     401  {object} handlers.ErrorResponse "Missing caller identity"
// @Failure     403  {object} handlers.ErrorResponse "Caller may not assign this role"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/{id}/role [put]
func (h *Handlers) SetUserRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.roleSvc.SetRole(c.Request.Context(), userID(c), c.Param("id"), strings.TrimSpace(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		case errors.Is(err, services.ErrInvalidRole):
			fail(c, http.StatusBadRequest, ErrCodeInvalidArgument, "role must be one of user, moderator, admin")
		case errors.Is(err, services.ErrPermissionDenied):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "permission denied")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// failModeration maps Approve/Reject sentinels to HTTP responses.
func failModeration(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
	case errors.Is(err, services.ErrPermissionDenied):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "moderator role required")
	case errors.Is(err, services.ErrItemNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
