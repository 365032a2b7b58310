package hierarchy

import (
	"errors"

	"github.com/planora-hq/planora/pkg/serrors"
)

const (
	errorCodeAccessDenied   = "HIERARCHY_ACCESS_DENIED"
	errorCodeEntityNotFound = "HIERARCHY_ENTITY_NOT_FOUND"

	accessDeniedLocaleKey   = "Authorization.PermissionDenied"
	entityNotFoundLocaleKey = "Authorization.EntityNotFound"
)

// accessDeniedError builds the standardized error surfaced when the
// resolved permission is insufficient for the requested action.
func accessDeniedError(actor Actor, ref EntityRef, action Action) *serrors.BaseError {
	return serrors.NewError(
		errorCodeAccessDenied,
		"permission denied",
		accessDeniedLocaleKey,
	).WithTemplateData(map[string]string{
		"entity": string(ref.Kind),
		"id":     ref.ID.String(),
		"action": string(action),
		"role":   string(actor.Role),
	})
}

// entityNotFoundError is returned at the enforcer boundary when an
// explicitly requested entity does not exist in the tenant.
func entityNotFoundError(ref EntityRef) *serrors.BaseError {
	return serrors.NewError(
		errorCodeEntityNotFound,
		"entity not found",
		entityNotFoundLocaleKey,
	).WithTemplateData(map[string]string{
		"entity": string(ref.Kind),
		"id":     ref.ID.String(),
	})
}

// IsAccessDenied reports whether err is an authorization denial from the
// enforcer.
func IsAccessDenied(err error) bool {
	var base *serrors.BaseError
	if !errors.As(err, &base) {
		return false
	}
	return base.Code == errorCodeAccessDenied
}

// IsEntityNotFound reports whether err is the enforcer's not-found error.
func IsEntityNotFound(err error) bool {
	var base *serrors.BaseError
	if !errors.As(err, &base) {
		return false
	}
	return base.Code == errorCodeEntityNotFound
}
