//
//  Copyright © Manetu Inc. All rights reserved.
//

package openperm

import (
	"context"
	"sync"
)

// Privilege is an actor-bound evaluator answering whether a single [Role]
// is satisfied. It returns zero or more partial [Approval] values; zero
// approvals means "no answer at all", which is distinct from a denial and
// is given meaning by the surrounding combinator or check.
//
// A Privilege is commonly constructed once an actor is authenticated and
// then reused for every check in that request context.
//
// A returned error is a hard failure (e.g. a failed lookup inside a
// host-supplied privilege) and aborts the evaluation; it is never converted
// into a denying approval.
type Privilege interface {
	Invoke(ctx context.Context, role Role) ([]Approval, error)
}

// PrivilegeFunc adapts an ordinary function to the [Privilege] interface.
type PrivilegeFunc func(ctx context.Context, role Role) ([]Approval, error)

// Invoke calls f.
func (f PrivilegeFunc) Invoke(ctx context.Context, role Role) ([]Approval, error) {
	return f(ctx, role)
}

// EmptyPrivilege returns a privilege with no answers at all: it yields zero
// approvals for every role. This is distinct from a denial.
func EmptyPrivilege() Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		return nil, nil
	})
}

// GrantPrivilege returns a privilege that answers every role with the fixed
// verdict. The approval's error defaults to the role's own error; a
// non-nil override replaces it.
func GrantPrivilege(value bool, override ...error) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		err := roleError(role)
		if len(override) > 0 && override[0] != nil {
			err = override[0]
		}
		return []Approval{{Value: value, Err: err}}, nil
	})
}

// ApprovalsPrivilege returns a privilege that answers every role with the
// fixed approval list.
func ApprovalsPrivilege(approvals ...Approval) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		return approvals, nil
	})
}

// CombinePrivilege concatenates privileges: the result answers a role with
// each member's approvals in order, without short-circuiting.
func CombinePrivilege(privileges ...Privilege) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		var approvals []Approval
		for _, privilege := range privileges {
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

// BuildPrivilege returns a privilege that computes another privilege from
// the role at invocation time, then invokes it with the same role.
func BuildPrivilege(builder func(ctx context.Context, role Role) (Privilege, error)) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		privilege, err := builder(ctx, role)
		if err != nil {
			return nil, err
		}
		return privilege.Invoke(ctx, role)
	})
}

// EveryPrivilege combines privileges with ALL semantics: every member must
// hold for the role to be satisfied.
//
// An empty member list is vacuously granted, with the role's own error as
// the default reason. Members are invoked strictly in list order; a member
// yielding zero approvals denies the role immediately, and the first
// failing approval anywhere is returned alone, short-circuiting so that
// members after it are never invoked. On clean completion the first
// approval seen carries the grant.
func EveryPrivilege(privileges ...Privilege) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		if len(privileges) == 0 {
			return []Approval{{Value: true, Err: roleError(role)}}, nil
		}

		var first Approval
		seen := false

		for _, privilege := range privileges {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			approvals, err := privilege.Invoke(ctx, role)
			if err != nil {
				return nil, err
			}
			if len(approvals) == 0 {
				return []Approval{{Value: false, Err: roleError(role)}}, nil
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
		return []Approval{{Value: true, Err: roleError(role)}}, nil
	})
}

// SomePrivilege combines privileges with ANY semantics: the role is
// satisfied if any member holds.
//
// An empty member list denies, with the role's own error as the default
// reason. Members are invoked strictly in list order; the first approving
// approval anywhere is returned alone, short-circuiting so that members
// after it are never invoked. If every member is exhausted without an
// approval, the first failure seen carries the denial.
func SomePrivilege(privileges ...Privilege) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		if len(privileges) == 0 {
			return []Approval{{Value: false, Err: roleError(role)}}, nil
		}

		var first Approval
		seen := false

		for _, privilege := range privileges {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			approvals, err := privilege.Invoke(ctx, role)
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
		return []Approval{{Value: false, Err: roleError(role)}}, nil
	})
}

// CachedPrivilege wraps an inner privilege with a memo of resolved roles.
// A role already answered is served from the memo without invoking the
// inner privilege again. Memoization is by Role value equality; the memo
// grows monotonically and is never evicted within the wrapper's lifetime.
//
// The memo is guarded for concurrent use, but the check-then-insert
// sequence is not atomic across the inner invocation: two concurrent
// evaluations racing on the same role may both invoke the inner privilege,
// with one result winning the memo slot. Memoization is therefore
// at-least-once, not exactly-once.
type CachedPrivilege struct {
	inner Privilege

	mu   sync.RWMutex
	memo map[Role][]Approval
}

// NewCachedPrivilege wraps the given privilege with a fresh, empty memo.
func NewCachedPrivilege(inner Privilege) *CachedPrivilege {
	return &CachedPrivilege{
		inner: inner,
		memo:  make(map[Role][]Approval),
	}
}

// Invoke answers from the memo when possible, otherwise consults the inner
// privilege and records its answer.
func (c *CachedPrivilege) Invoke(ctx context.Context, role Role) ([]Approval, error) {
	c.mu.RLock()
	approvals, ok := c.memo[role]
	c.mu.RUnlock()
	if ok {
		return approvals, nil
	}

	approvals, err := c.inner.Invoke(ctx, role)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.memo[role] = approvals
	c.mu.Unlock()

	return approvals, nil
}
