package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cardnest/cardnest-api/internal/models"
	appErrors "github.com/cardnest/cardnest-api/pkg/errors"
)

// TenantScope is the visibility boundary derived from the session token, not
// from caller-supplied input. A non-empty Department narrows an institute
// admin's student visibility to that branch.
type TenantScope struct {
	InstitutionID string
	Department    string
}

type scopeAdminDirectory interface {
	FindInstituteAdminByID(ctx context.Context, id string) (*models.InstituteAdmin, error)
}

// TenantResolver derives the tenant scope for a set of session claims.
type TenantResolver struct {
	admins scopeAdminDirectory
}

// NewTenantResolver constructs a TenantResolver.
func NewTenantResolver(admins scopeAdminDirectory) *TenantResolver {
	return &TenantResolver{admins: admins}
}

// Resolve returns the caller's tenant scope. Every entity-listing operation
// applies this scope before any caller-supplied filter.
func (t *TenantResolver) Resolve(ctx context.Context, claims *models.SessionClaims) (TenantScope, error) {
	if claims == nil {
		return TenantScope{}, appErrors.ErrUnauthorized
	}
	if claims.InstitutionID == nil || *claims.InstitutionID == "" {
		return TenantScope{}, appErrors.Clone(appErrors.ErrForbidden, "no institution bound to session")
	}
	scope := TenantScope{InstitutionID: *claims.InstitutionID}

	if claims.Role == models.RoleInstituteAdmin {
		admin, err := t.admins.FindInstituteAdminByID(ctx, claims.PrincipalID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return TenantScope{}, appErrors.Clone(appErrors.ErrForbidden, "admin account no longer exists")
			}
			return TenantScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve tenant scope")
		}
		if admin.InstitutionID != scope.InstitutionID {
			return TenantScope{}, appErrors.ErrForbidden
		}
		if admin.Department != nil {
			scope.Department = *admin.Department
		}
	}

	return scope, nil
}
