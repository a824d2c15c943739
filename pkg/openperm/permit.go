//
//  Copyright © Manetu Inc. All rights reserved.
//

package openperm

import (
	"context"
)

// Permit resolves a target to the ordered list of [Role] values required to
// access it. Resolution may suspend on external lookups; implementations
// should observe ctx.
//
// A returned error is a hard failure of the evaluation (e.g. a failed
// lookup inside a host-supplied permit) and is never converted into a
// denial by the engine.
type Permit[T any] interface {
	Invoke(ctx context.Context, target T) ([]Role, error)
}

// PermitFunc adapts an ordinary function to the [Permit] interface.
type PermitFunc[T any] func(ctx context.Context, target T) ([]Role, error)

// Invoke calls f.
func (f PermitFunc[T]) Invoke(ctx context.Context, target T) ([]Role, error) {
	return f(ctx, target)
}

// EmptyPermit returns a permit that requires nothing: it resolves every
// target to zero roles.
func EmptyPermit[T any]() Permit[T] {
	return PermitFunc[T](func(ctx context.Context, target T) ([]Role, error) {
		return nil, nil
	})
}

// ErrorPermit returns a permit that resolves every target to a single
// [ErrorRole] carrying the fixed error.
func ErrorPermit[T any](err error) Permit[T] {
	return PermitFunc[T](func(ctx context.Context, target T) ([]Role, error) {
		return []Role{ErrorRole{Err: err}}, nil
	})
}

// RolesPermit returns a permit that resolves every target to the fixed
// list of roles, in the given order.
func RolesPermit[T any](roles ...Role) Permit[T] {
	return PermitFunc[T](func(ctx context.Context, target T) ([]Role, error) {
		return roles, nil
	})
}

// CombinePermit concatenates permits: the result resolves a target to each
// member's roles in order, with a later permit's roles following an earlier
// one's. Members are invoked strictly in list order.
func CombinePermit[T any](permits ...Permit[T]) Permit[T] {
	return PermitFunc[T](func(ctx context.Context, target T) ([]Role, error) {
		var roles []Role
		for _, permit := range permits {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rs, err := permit.Invoke(ctx, target)
			if err != nil {
				return nil, err
			}
			roles = append(roles, rs...)
		}
		return roles, nil
	})
}

// MapPermit adapts permits over U to a permit over T: the mapper first
// transforms the target, then each inner permit resolves the mapped value,
// with results concatenated in order.
func MapPermit[T, U any](mapper func(ctx context.Context, target T) (U, error), permits ...Permit[U]) Permit[T] {
	combined := CombinePermit(permits...)
	return PermitFunc[T](func(ctx context.Context, target T) ([]Role, error) {
		mapped, err := mapper(ctx, target)
		if err != nil {
			return nil, err
		}
		return combined.Invoke(ctx, mapped)
	})
}

// BuildPermit returns a permit that computes another permit from the target
// at invocation time, then invokes it with the same target. This provides
// late dynamic dispatch keyed on the target's value.
func BuildPermit[T any](builder func(ctx context.Context, target T) (Permit[T], error)) Permit[T] {
	return PermitFunc[T](func(ctx context.Context, target T) ([]Role, error) {
		permit, err := builder(ctx, target)
		if err != nil {
			return nil, err
		}
		return permit.Invoke(ctx, target)
	})
}
