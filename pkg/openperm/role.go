//
//  Copyright © Manetu Inc. All rights reserved.
//

package openperm

// Role is an opaque, application-defined capability requirement produced by
// a [Permit] and decided by a [Privilege].
//
// The engine treats roles opaquely except for two things: the default
// denial reason returned by RoleError, used whenever a deciding evaluator
// gives no explicit reason of its own, and value equality, used as the memo
// key by [CachedPrivilege]. Implementations must therefore be comparable Go
// values (flat structs with comparable fields are sufficient); pointer-typed
// roles memoize by identity rather than by value.
//
// Concrete variants are defined entirely by the host application, e.g.
// "ownership of X" or "grant G on X". A flat set of struct variants with an
// explicit discriminating type keeps Privilege-side matching exhaustive.
type Role interface {
	// RoleError returns the default denial reason for this role, or nil.
	RoleError() error
}

// ErrorRole is a trivial role whose own error is fixed. It is the role
// emitted by [ErrorPermit] and is handy as a placeholder requirement that
// can never be satisfied by construction alone.
type ErrorRole struct {
	Err error
}

// RoleError returns the fixed error carried by the role.
func (r ErrorRole) RoleError() error {
	return r.Err
}

// roleError extracts a role's default denial reason, tolerating nil roles.
func roleError(role Role) error {
	if role == nil {
		return nil
	}
	return role.RoleError()
}
