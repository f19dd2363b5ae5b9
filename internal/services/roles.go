package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/qrmenu/go-catalog-backend/internal/domain"
	"github.com/qrmenu/go-catalog-backend/internal/repo"
)

// RoleProvider answers "what role does this user hold". Moderation decisions
// gate on it; implementations must treat an unknown user as a plain user, not
// as an error, so a missing profile can never block reporting or browsing.
type RoleProvider interface {
	Role(ctx context.Context, userID string) (string, error)
}

// DBRoleProvider resolves roles from the users table.
type DBRoleProvider struct {
	DB *gorm.DB
}

// Role returns the stored role for userID, defaulting to the base user role
// when no profile exists or the stored value is not a known role.
func (p *DBRoleProvider) Role(ctx context.Context, userID string) (string, error) {
	u, err := repo.GetUser(ctx, p.DB, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RoleUser, nil
	}
	if err != nil {
		return "", err
	}
	if !domain.ValidRole(u.Role) {
		return domain.RoleUser, nil
	}
	return u.Role, nil
}

// RoleService assigns roles. Kept separate from the provider so handlers that
// only need lookups do not see the write path.
type RoleService struct {
	DB    *gorm.DB
	Roles RoleProvider
}

// SetRole assigns role to targetID on behalf of callerID.
//
// Admins may assign any role to anyone. Every other caller may only reset
// their own role to the base user role (self-demotion); anything else is
// ErrPermissionDenied.
func (s *RoleService) SetRole(ctx context.Context, callerID, targetID, role string) error {
	callerID = strings.TrimSpace(callerID)
	targetID = strings.TrimSpace(targetID)
	if callerID == "" {
		return ErrUnauthenticated
	}
	if targetID == "" || !domain.ValidRole(role) {
		return ErrInvalidRole
	}

	callerRole, err := s.Roles.Role(ctx, callerID)
	if err != nil {
		return err
	}
	if callerRole != domain.RoleAdmin {
		if callerID != targetID || role != domain.RoleUser {
			return ErrPermissionDenied
		}
	}
	return repo.UpsertUserRole(ctx, s.DB, targetID, role)
}
