// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted catalogue administration
	RoleAdmin UserRole = "admin"

	// Onboarding team: verifies, audits and publishes on behalf of admins
	RoleEPOT UserRole = "epot"

	// Administers one or more providers and their resources
	RoleProvider UserRole = "provider"

	// Default role for authenticated readers
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleEPOT:
		return 30
	case RoleProvider:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
