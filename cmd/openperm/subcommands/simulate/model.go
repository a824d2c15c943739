//
//  Copyright © Manetu Inc. All rights reserved.
//

package simulate

import (
	"context"
	"fmt"

	"github.com/cufyorg/openperm/pkg/openperm"
	"gopkg.in/yaml.v3"
)

// Account is an actor in the fixture. Administrators satisfy every role
// unconditionally; everyone else is judged by ownership and grants.
type Account struct {
	ID     string              `yaml:"id"`
	Admin  bool                `yaml:"admin,omitempty"`
	Grants map[string][]string `yaml:"grants,omitempty"` // entity id -> operations
}

// Entity is a protected document in the fixture.
type Entity struct {
	ID     string `yaml:"id"`
	Owner  string `yaml:"owner"`
	Public bool   `yaml:"public,omitempty"`
}

// Check is one decision to simulate: can actor perform operation on entity.
type Check struct {
	Actor     string `yaml:"actor"`
	Entity    string `yaml:"entity"`
	Operation string `yaml:"operation,omitempty"` // defaults to "read"
}

// Fixture is the complete scenario: who exists, what exists, and which
// decisions to evaluate.
type Fixture struct {
	Accounts []Account `yaml:"accounts"`
	Entities []Entity  `yaml:"entities"`
	Checks   []Check   `yaml:"checks"`
}

// builtinFixture is used when no fixture file is given: a private document
// owned by alice and shared with bob, plus an administrator.
const builtinFixture = `
accounts:
  - id: alice
  - id: bob
    grants:
      doc-1: [read]
  - id: eve
  - id: root
    admin: true
entities:
  - id: doc-1
    owner: alice
  - id: doc-2
    owner: alice
    public: true
checks:
  - actor: alice
    entity: doc-1
  - actor: bob
    entity: doc-1
  - actor: bob
    entity: doc-1
    operation: write
  - actor: eve
    entity: doc-1
  - actor: eve
    entity: doc-2
  - actor: root
    entity: doc-1
    operation: write
`

// ParseFixture decodes a YAML fixture and validates its cross-references.
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	accounts := make(map[string]struct{}, len(fixture.Accounts))
	for _, account := range fixture.Accounts {
		accounts[account.ID] = struct{}{}
	}
	entities := make(map[string]struct{}, len(fixture.Entities))
	for _, entity := range fixture.Entities {
		entities[entity.ID] = struct{}{}
	}

	for i, check := range fixture.Checks {
		if _, ok := accounts[check.Actor]; !ok {
			return nil, fmt.Errorf("check %d references unknown account %q", i, check.Actor)
		}
		if _, ok := entities[check.Entity]; !ok {
			return nil, fmt.Errorf("check %d references unknown entity %q", i, check.Entity)
		}
		switch check.Operation {
		case "", "read", "write":
		default:
			return nil, fmt.Errorf("check %d has unsupported operation %q", i, check.Operation)
		}
	}

	return &fixture, nil
}

// publicRole requires the entity to be publicly visible.
type publicRole struct{ entityID string }

func (r publicRole) RoleError() error {
	return fmt.Errorf("entity %s is not public", r.entityID)
}

// ownedRole requires the actor to own the entity.
type ownedRole struct {
	entityID string
	owner    string
}

func (r ownedRole) RoleError() error {
	return fmt.Errorf("not the owner of entity %s", r.entityID)
}

// grantedRole requires an explicit grant on the entity.
type grantedRole struct {
	entityID string
	grant    string
}

func (r grantedRole) RoleError() error {
	return fmt.Errorf("no %s grant on entity %s", r.grant, r.entityID)
}

// accountPrivilege decides roles on behalf of one account. The result is
// cached so repeated checks against the same account reuse prior answers.
func accountPrivilege(account Account) openperm.Privilege {
	return openperm.NewCachedPrivilege(openperm.PrivilegeFunc(func(ctx context.Context, role openperm.Role) ([]openperm.Approval, error) {
		if account.Admin {
			return []openperm.Approval{openperm.NewApproval(true, nil)}, nil
		}

		switch r := role.(type) {
		case ownedRole:
			return []openperm.Approval{openperm.NewApproval(r.owner == account.ID, r.RoleError())}, nil
		case grantedRole:
			for _, grant := range account.Grants[r.entityID] {
				if grant == r.grant {
					return []openperm.Approval{openperm.NewApproval(true, nil)}, nil
				}
			}
			return []openperm.Approval{openperm.NewApproval(false, r.RoleError())}, nil
		default:
			return nil, nil
		}
	}))
}

// ownedPermission requires ownership of the target entity.
func ownedPermission() openperm.Permission[Entity] {
	return openperm.PermitPermission(openperm.PermitFunc[Entity](func(ctx context.Context, target Entity) ([]openperm.Role, error) {
		return []openperm.Role{ownedRole{entityID: target.ID, owner: target.Owner}}, nil
	}))
}

// grantedPermission requires an explicit grant for the operation.
func grantedPermission(operation string) openperm.Permission[Entity] {
	return openperm.PermitPermission(openperm.PermitFunc[Entity](func(ctx context.Context, target Entity) ([]openperm.Role, error) {
		return []openperm.Role{grantedRole{entityID: target.ID, grant: operation}}, nil
	}))
}

// publicPermission grants publicly visible entities and stays silent on the
// rest, letting the other branches decide.
func publicPermission() openperm.Permission[Entity] {
	return openperm.PermissionFunc[Entity](func(ctx context.Context, privilege openperm.Privilege, target Entity) ([]openperm.Approval, error) {
		if !target.Public {
			return nil, nil
		}
		return privilege.Invoke(ctx, publicRole{entityID: target.ID})
	})
}

// operationPermission builds the document-sharing model for one operation:
// reads pass for public entities, explicit grantees, or the owner; writes
// pass for explicit grantees or the owner.
func operationPermission(operation string) (openperm.Permission[Entity], error) {
	switch operation {
	case "", "read":
		return openperm.SomePermission(
			publicPermission(),
			openperm.SomePermission(grantedPermission("read"), ownedPermission()),
		), nil
	case "write":
		return openperm.SomePermission(grantedPermission("write"), ownedPermission()), nil
	default:
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}
}
