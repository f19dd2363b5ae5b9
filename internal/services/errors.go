// Package services defines the business logic for promotion, moderation, and
// venue management. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requiring a caller
	// identity is invoked without one.
	ErrUnauthenticated = errors.New("caller identity required")

	// ErrPermissionDenied is returned when the caller's role does not allow
	// the requested moderation transition.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStagingRequired is returned when a promotion request carries no
	// staging id.
	ErrStagingRequired = errors.New("staging id is required")

	// ErrStagingNotFound indicates that the referenced staging record does
	// not exist (it may have expired or already been promoted).
	ErrStagingNotFound = errors.New("staging record not found")

	// ErrVenueUnresolved is returned when neither the staging record nor the
	// request names a venue for the promotion.
	ErrVenueUnresolved = errors.New("venue id not present in staging record")

	// ErrVenueNotFound indicates that the referenced venue does not exist.
	ErrVenueNotFound = errors.New("venue not found")

	// ErrVenueExists is returned when creating a venue whose id is already
	// taken.
	ErrVenueExists = errors.New("venue already exists")

	// ErrItemNotFound indicates that the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemData is returned when, after applying overrides, the
	// final item name is empty or the final price is not positive.
	ErrInvalidItemData = errors.New("invalid item data: name must be non-empty and price positive")

	// ErrInvalidReason is returned when a report reason is outside the
	// accepted enum.
	ErrInvalidReason = errors.New("invalid report reason")

	// ErrDuplicateReport is returned when a caller reports the same item a
	// second time.
	ErrDuplicateReport = errors.New("item already reported by this user")

	// ErrInvalidRole is returned when a role assignment names an unknown role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrVenueNameRequired is returned when creating a venue without a name.
	ErrVenueNameRequired = errors.New("venue name is required")
)
