package actor

import (
	"github.com/google/uuid"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
)

// Actor is the acting context resolved per call by the boundary layer:
// which tenant, store, and user a core operation runs as. Core services
// take it as an explicit argument; there is no ambient resolver.
type Actor struct {
	TenantID uuid.UUID
	StoreID  uuid.UUID
	UserID   uuid.UUID
	Role     enums.MemberRole
}

// Validate checks the fields every core operation depends on.
func (a Actor) Validate() error {
	if a.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant context missing")
	}
	if a.StoreID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store context missing")
	}
	if a.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return nil
}

// ValidateTenant checks only the tenant scope, for reads that span stores.
func (a Actor) ValidateTenant() error {
	if a.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant context missing")
	}
	return nil
}
