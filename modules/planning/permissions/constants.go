// Package permissions names the administrative capabilities of the
// planning module. Work-item access is decided by the hierarchy engine;
// these gates only cover operations on the tree and the grants themselves.
package permissions

import "github.com/planora-hq/planora/pkg/hierarchy"

type Permission string

const (
	TreeManage  Permission = "planning.tree.manage"
	GrantManage Permission = "planning.grants.manage"
)

var Permissions = []Permission{
	TreeManage,
	GrantManage,
}

// Allowed reports whether the tenant-wide role carries the capability.
// Delegated authority (an Edit grant on a branch) is checked separately by
// the callers that accept it.
func Allowed(role hierarchy.Role, permission Permission) bool {
	switch permission {
	case TreeManage, GrantManage:
		return role == hierarchy.RoleOwner || role == hierarchy.RoleAdmin
	}
	return false
}
