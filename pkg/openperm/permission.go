//
//  Copyright © Manetu Inc. All rights reserved.
//

package openperm

import (
	"context"

	"github.com/cufyorg/openperm/pkg/common"
)

// Permission is the top-level orchestrator: given a [Privilege] and a
// target, it produces the partial [Approval] values for the target. A
// permission typically resolves the target's required roles via an embedded
// [Permit] and asks the supplied privilege about each, but it may also wrap
// raw approval logic directly.
//
// A returned error is a hard failure and aborts the evaluation; it is never
// converted into a denying approval.
type Permission[T any] interface {
	Invoke(ctx context.Context, privilege Privilege, target T) ([]Approval, error)
}

// PermissionFunc adapts an ordinary function to the [Permission] interface.
type PermissionFunc[T any] func(ctx context.Context, privilege Privilege, target T) ([]Approval, error)

// Invoke calls f.
func (f PermissionFunc[T]) Invoke(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
	return f(ctx, privilege, target)
}

// EmptyPermission returns a permission with no answers at all: it yields
// zero approvals for every target.
func EmptyPermission[T any]() Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		return nil, nil
	})
}

// GrantPermission returns a permission that answers every target with the
// fixed verdict. A non-nil override becomes the approval's error.
func GrantPermission[T any](value bool, override ...error) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		var err error
		if len(override) > 0 && override[0] != nil {
			err = override[0]
		}
		return []Approval{{Value: value, Err: err}}, nil
	})
}

// ApprovalsPermission returns a permission that answers every target with
// the fixed approval list.
func ApprovalsPermission[T any](approvals ...Approval) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		return approvals, nil
	})
}

// RolesPermission returns a permission requiring the fixed roles: the
// privilege is asked about every role, with all approvals concatenated in
// role order and no short-circuit.
func RolesPermission[T any](roles ...Role) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		var approvals []Approval
		for _, role := range roles {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			as, err := privilege.Invoke(ctx, role)
			if err != nil {
				return nil, err
			}
			approvals = append(approvals, as...)
		}
		return approvals, nil
	})
}

// PermitPermission bridges the [Permit] world into the Permission world:
// each permit's roles are resolved for the target, the privilege is asked
// about every one, and everything is concatenated in order.
func PermitPermission[T any](permits ...Permit[T]) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		var approvals []Approval
		for _, permit := range permits {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			roles, err := permit.Invoke(ctx, target)
			if err != nil {
				return nil, err
			}
			for _, role := range roles {
				as, err := privilege.Invoke(ctx, role)
				if err != nil {
					return nil, err
				}
				approvals = append(approvals, as...)
			}
		}
		return approvals, nil
	})
}

// MapPermission adapts permissions over U to a permission over T: the
// mapper first transforms the target, then each inner permission is
// evaluated against the mapped value, with results concatenated in order.
func MapPermission[T, U any](mapper func(ctx context.Context, target T) (U, error), permissions ...Permission[U]) Permission[T] {
	combined := CombinePermission(permissions...)
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		mapped, err := mapper(ctx, target)
		if err != nil {
			return nil, err
		}
		return combined.Invoke(ctx, privilege, mapped)
	})
}

// CombinePermission concatenates permissions: the result answers a target
// with each member's approvals in order, without short-circuiting.
func CombinePermission[T any](permissions ...Permission[T]) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		var approvals []Approval
		for _, permission := range permissions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			as, err := permission.Invoke(ctx, privilege, target)
			if err != nil {
				return nil, err
			}
			approvals = append(approvals, as...)
		}
		return approvals, nil
	})
}

// BuildPermission returns a permission that computes another permission
// from the target at invocation time, then evaluates it with the same
// privilege and target.
func BuildPermission[T any](builder func(ctx context.Context, target T) (Permission[T], error)) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		permission, err := builder(ctx, target)
		if err != nil {
			return nil, err
		}
		return permission.Invoke(ctx, privilege, target)
	})
}

// EveryPermission combines permissions with ALL semantics, structurally
// identical to [EveryPrivilege]. Because a permission operates over
// heterogeneous roles with no single natural default reason, the vacuous
// and failure defaults use the generic denials instead of a role's own
// error: an empty member list is vacuously granted tagged no-checklist, and
// a member yielding zero approvals denies tagged no-results.
func EveryPermission[T any](permissions ...Permission[T]) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		if len(permissions) == 0 {
			return []Approval{{Value: true, Err: common.ErrNoChecklist}}, nil
		}

		var first Approval
		seen := false

		for _, permission := range permissions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			approvals, err := permission.Invoke(ctx, privilege, target)
			if err != nil {
				return nil, err
			}
			if len(approvals) == 0 {
				return []Approval{{Value: false, Err: common.ErrNoResults}}, nil
			}

			for _, approval := range approvals {
				if !approval.Value {
					return []Approval{approval}, nil
				}
				if !seen {
					first, seen = approval, true
				}
			}
		}

		if seen {
			return []Approval{first}, nil
		}
		return []Approval{{Value: true, Err: common.ErrNoResults}}, nil
	})
}

// SomePermission combines permissions with ANY semantics, structurally
// identical to [SomePrivilege] but with the generic denials as defaults: an
// empty member list denies tagged no-checklist, and exhausting every member
// without an approval or a failure denies tagged no-results.
func SomePermission[T any](permissions ...Permission[T]) Permission[T] {
	return PermissionFunc[T](func(ctx context.Context, privilege Privilege, target T) ([]Approval, error) {
		if len(permissions) == 0 {
			return []Approval{{Value: false, Err: common.ErrNoChecklist}}, nil
		}

		var first Approval
		seen := false

		for _, permission := range permissions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			approvals, err := permission.Invoke(ctx, privilege, target)
			if err != nil {
				return nil, err
			}

			for _, approval := range approvals {
				if approval.Value {
					return []Approval{approval}, nil
				}
				if !seen {
					first, seen = approval, true
				}
			}
		}

		if seen {
			return []Approval{first}, nil
		}
		return []Approval{{Value: false, Err: common.ErrNoResults}}, nil
	})
}
