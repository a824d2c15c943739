//
//  Copyright © Manetu Inc. All rights reserved.
//

// This file implements the evaluation protocol layered over every
// evaluator kind: Check reduces partial results to exactly one Approval,
// Test is the boolean convenience, and Require converts a denial into an
// error while returning the original input for chaining.
//
// Check and Test never report a denial through the error return; the error
// is reserved for hard failures raised by host-supplied evaluators, which
// propagate unchanged. Require is the only entry point that turns a denial
// into an error.

package openperm

import (
	"context"

	"github.com/cufyorg/openperm/pkg/common"
)

// reduce collapses a flat approval list to one decisive approval: the first
// failing approval wins, otherwise the first approval. An empty list denies
// with the given default error. No suppression diagnostics are tracked at
// this layer; only the permit-level check does that.
func reduce(approvals []Approval, empty error) Approval {
	if len(approvals) == 0 {
		return Approval{Value: false, Err: empty}
	}
	for _, approval := range approvals {
		if !approval.Value {
			return approval
		}
	}
	return approvals[0]
}

// DenialOf extracts the error to surface for a denying approval, falling
// back to the generic unspecified denial.
func DenialOf(approval Approval) error {
	if approval.Err != nil {
		return approval.Err
	}
	return common.ErrUnspecified
}

// CheckPrivilege reduces a privilege's answers for one role to a single
// decisive approval. Zero answers deny, explained by the role's own error
// when present and the generic no-results denial otherwise.
func CheckPrivilege(ctx context.Context, privilege Privilege, role Role) (Approval, error) {
	approvals, err := privilege.Invoke(ctx, role)
	if err != nil {
		return Approval{}, err
	}

	empty := roleError(role)
	if empty == nil {
		empty = common.ErrNoResults
	}

	return reduce(approvals, empty), nil
}

// TestPrivilege reports whether the privilege satisfies the role.
func TestPrivilege(ctx context.Context, privilege Privilege, role Role) (bool, error) {
	approval, err := CheckPrivilege(ctx, privilege, role)
	if err != nil {
		return false, err
	}
	return approval.Value, nil
}

// RequirePrivilege returns the role unchanged when the privilege satisfies
// it, and the decisive approval's error otherwise.
func RequirePrivilege(ctx context.Context, privilege Privilege, role Role) (Role, error) {
	approval, err := CheckPrivilege(ctx, privilege, role)
	if err != nil {
		return role, err
	}
	if !approval.Value {
		return role, DenialOf(approval)
	}
	return role, nil
}

// CheckPermission reduces a permission's answers for one target to a single
// decisive approval. Zero answers deny with the generic no-results denial.
func CheckPermission[T any](ctx context.Context, permission Permission[T], privilege Privilege, target T) (Approval, error) {
	approvals, err := permission.Invoke(ctx, privilege, target)
	if err != nil {
		return Approval{}, err
	}
	return reduce(approvals, common.ErrNoResults), nil
}

// TestPermission reports whether the permission grants the target under the
// given privilege.
func TestPermission[T any](ctx context.Context, permission Permission[T], privilege Privilege, target T) (bool, error) {
	approval, err := CheckPermission(ctx, permission, privilege, target)
	if err != nil {
		return false, err
	}
	return approval.Value, nil
}

// RequirePermission returns the target unchanged when the permission grants
// it, and the decisive approval's error otherwise.
func RequirePermission[T any](ctx context.Context, permission Permission[T], privilege Privilege, target T) (T, error) {
	approval, err := CheckPermission(ctx, permission, privilege, target)
	if err != nil {
		return target, err
	}
	if !approval.Value {
		return target, DenialOf(approval)
	}
	return target, nil
}

// CheckPermit composes a permit with a privilege: the permit resolves the
// target's required roles, the privilege is asked about each role strictly
// in order, and the results are reduced to one decisive approval.
//
// Zero resolved roles deny with the generic no-checklist denial. For each
// role, zero answers from the privilege deny immediately with the role's
// own error, carrying every approval that already passed as suppressed
// diagnostics; a failing answer is returned with those prior passes plus
// the role's own non-failing answers suppressed. When every role passes,
// the first passing approval carries all the others as suppressed
// diagnostics.
//
// This is the only layer of the protocol that tracks suppression; the flat
// reductions in [CheckPrivilege] and [CheckPermission] deliberately do not,
// so diagnostic completeness differs by evaluation layer.
func CheckPermit[T any](ctx context.Context, permit Permit[T], privilege Privilege, target T) (Approval, error) {
	roles, err := permit.Invoke(ctx, target)
	if err != nil {
		return Approval{}, err
	}
	if len(roles) == 0 {
		return Approval{Value: false, Err: common.ErrNoChecklist}, nil
	}

	var successes []Approval

	for _, role := range roles {
		if err := ctx.Err(); err != nil {
			return Approval{}, err
		}

		approvals, err := privilege.Invoke(ctx, role)
		if err != nil {
			return Approval{}, err
		}
		if len(approvals) == 0 {
			return Approval{Value: false, Err: roleError(role), Suppressed: successes}, nil
		}

		failing := -1
		for i, approval := range approvals {
			if !approval.Value {
				failing = i
				break
			}
		}

		if failing >= 0 {
			suppressed := make([]Approval, 0, len(successes)+len(approvals)-1)
			suppressed = append(suppressed, successes...)
			suppressed = append(suppressed, approvals[:failing]...)
			suppressed = append(suppressed, approvals[failing+1:]...)
			return approvals[failing].Suppress(suppressed...), nil
		}

		successes = append(successes, approvals...)
	}

	if len(successes) > 0 {
		return successes[0].Suppress(successes[1:]...), nil
	}

	// Unreachable in practice: a role with zero approvals denies above.
	return Approval{Value: true, Err: roleError(roles[0])}, nil
}

// TestPermit reports whether the privilege satisfies every role the permit
// resolves for the target.
func TestPermit[T any](ctx context.Context, permit Permit[T], privilege Privilege, target T) (bool, error) {
	approval, err := CheckPermit(ctx, permit, privilege, target)
	if err != nil {
		return false, err
	}
	return approval.Value, nil
}

// RequirePermit returns the target unchanged when the privilege satisfies
// every role the permit resolves for it, and the decisive approval's error
// otherwise.
func RequirePermit[T any](ctx context.Context, permit Permit[T], privilege Privilege, target T) (T, error) {
	approval, err := CheckPermit(ctx, permit, privilege, target)
	if err != nil {
		return target, err
	}
	if !approval.Value {
		return target, DenialOf(approval)
	}
	return target, nil
}
