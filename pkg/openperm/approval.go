//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package openperm implements a small algebra of composable, asynchronous
// authorization predicates deciding whether an actor may act on a target.
//
// The algebra separates "what must be checked" from "who decides":
//
//   - A [Permit] resolves a target to the abstract [Role] values required
//     to access it.
//   - A [Privilege] is an actor-bound evaluator answering whether a single
//     Role is satisfied.
//   - A [Permission] orchestrates the two into a verdict for a target, or
//     wraps raw approval logic directly.
//
// Each evaluator kind offers the same list-combinators: ordered
// concatenation, ALL-semantics ([EveryPrivilege], [EveryPermission]),
// ANY-semantics ([SomePrivilege], [SomePermission]), mapping across target
// types, and a late-bound builder form. Combinators evaluate members
// strictly in list order and short-circuit by not invoking the remaining
// members once a decisive result is found; a member with side effects that
// appears after a decisive member is guaranteed not to run.
//
// The evaluation protocol ([CheckPermit], [CheckPrivilege],
// [CheckPermission] and their Test/Require forms) reduces the partial
// [Approval] results of an evaluation to exactly one verdict with a
// diagnostic trail of suppressed sibling approvals.
//
// Evaluator values are immutable once constructed and safe for concurrent
// use; the sole exception is the mutable memo inside [CachedPrivilege],
// which is mutex-guarded.
//
// Policies are expressed directly as composed evaluator values by the host
// application; there is no policy language, persistence, or wire protocol.
package openperm

// Approval is one immutable verdict: a boolean result, an optional error
// explaining a denial, and an optional list of suppressed sibling verdicts
// retained purely as diagnostics.
//
// Suppressed approvals record "other evaluations that were performed along
// the way" when a list of partial results is reduced to a single decisive
// Approval. They never affect Value; they exist for audit trails and
// debugging.
type Approval struct {
	// Value is the verdict: true grants, false denies.
	Value bool

	// Err optionally explains a denial. The engine never interprets it
	// beyond "is one present"; it is an opaque application payload.
	Err error

	// Suppressed holds sibling approvals considered during the reduction
	// that produced this approval, in evaluation order. It never contains
	// the approval itself.
	Suppressed []Approval
}

// NewApproval constructs an approval with the given verdict and optional
// explanatory error.
func NewApproval(value bool, err error) Approval {
	return Approval{Value: value, Err: err}
}

// Suppress returns a copy of the approval with the given approvals appended
// to its suppressed diagnostics. If more is empty, the approval is returned
// unchanged. The receiver is never mutated.
func (a Approval) Suppress(more ...Approval) Approval {
	if len(more) == 0 {
		return a
	}

	suppressed := make([]Approval, 0, len(a.Suppressed)+len(more))
	suppressed = append(suppressed, a.Suppressed...)
	suppressed = append(suppressed, more...)

	return Approval{
		Value:      a.Value,
		Err:        a.Err,
		Suppressed: suppressed,
	}
}
