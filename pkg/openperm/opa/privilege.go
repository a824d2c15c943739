//
//  Copyright © Manetu Inc. All rights reserved.
//

package opa

import (
	"context"

	"github.com/cufyorg/openperm/pkg/openperm"
)

// InputMapper converts a role into the input document handed to the policy.
type InputMapper func(role openperm.Role) (interface{}, error)

// NewPrivilege returns a privilege that delegates every role decision to
// the compiled policy. The mapper renders the role as the policy input, and
// the decision is taken from "data.authz.allow". Mapper and evaluation
// failures are hard errors, not denials.
//
// A denying decision is explained by the role's own error, so policy
// denials read the same as denials from host-written privileges.
func NewPrivilege(policy *Ast, mapper InputMapper) openperm.Privilege {
	return openperm.PrivilegeFunc(func(ctx context.Context, role openperm.Role) ([]openperm.Approval, error) {
		input, err := mapper(role)
		if err != nil {
			return nil, err
		}

		allowed, err := policy.EvaluateBool(ctx, input)
		if err != nil {
			return nil, err
		}

		return []openperm.Approval{openperm.NewApproval(allowed, role.RoleError())}, nil
	})
}
