package services

import (
	"errors"

	"github.com/planora-hq/planora/modules/planning/permissions"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/serrors"
)

const errorCodeForbidden = "PLANNING_FORBIDDEN"

// forbiddenError is the denial for administrative operations gated by a
// tenant-wide role. Work-item denials come from the enforcer instead.
func forbiddenError(permission permissions.Permission, actor hierarchy.Actor) *serrors.BaseError {
	return serrors.NewError(
		errorCodeForbidden,
		"operation not permitted",
		"Authorization.PermissionDenied",
	).WithTemplateData(map[string]string{
		"permission": string(permission),
		"role":       string(actor.Role),
	})
}

func IsForbidden(err error) bool {
	var base *serrors.BaseError
	if !errors.As(err, &base) {
		return false
	}
	return base.Code == errorCodeForbidden
}
