//
//  Copyright © Manetu Inc. All rights reserved.
//

// End-to-end scenarios over a small document-sharing model: entities with
// an owner and a public flag, accounts with explicit grants, and an
// administrator account that satisfies every role unconditionally.

package openperm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entity struct {
	id     string
	owner  string
	public bool
}

type account struct {
	id     string
	admin  bool
	grants map[string][]string // entity id -> grant names
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

// accountPrivilege decides roles on behalf of an account. Administrators
// satisfy everything unconditionally. Other accounts answer the roles they
// recognize and stay silent on anything else.
func accountPrivilege(acct account) Privilege {
	return PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		if acct.admin {
			return []Approval{NewApproval(true, nil)}, nil
		}

		switch r := role.(type) {
		case ownedRole:
			return []Approval{NewApproval(r.owner == acct.id, r.RoleError())}, nil
		case grantedRole:
			for _, grant := range acct.grants[r.entityID] {
				if grant == r.grant {
					return []Approval{NewApproval(true, nil)}, nil
				}
			}
			return []Approval{NewApproval(false, r.RoleError())}, nil
		default:
			return nil, nil
		}
	})
}

// readPermission is "ANY-of(public, ANY-of(granted, owned))": an entity is
// readable if it is public, explicitly shared with the actor, or owned by
// the actor.
func readPermission() Permission[entity] {
	public := PermissionFunc[entity](func(ctx context.Context, privilege Privilege, target entity) ([]Approval, error) {
		if !target.public {
			return nil, nil // not applicable; let the other branches decide
		}
		return privilege.Invoke(ctx, publicRole{entityID: target.id})
	})

	granted := PermitPermission(PermitFunc[entity](func(ctx context.Context, target entity) ([]Role, error) {
		return []Role{grantedRole{entityID: target.id, grant: "read"}}, nil
	}))

	owned := PermitPermission(PermitFunc[entity](func(ctx context.Context, target entity) ([]Role, error) {
		return []Role{ownedRole{entityID: target.id, owner: target.owner}}, nil
	}))

	return SomePermission(public, SomePermission(granted, owned))
}

func TestAdministratorReadsForeignPublicEntity(t *testing.T) {
	admin := account{id: "root", admin: true}
	doc := entity{id: "doc-1", owner: "alice", public: true}

	privilege := accountPrivilege(admin)
	permission := readPermission()

	granted, err := TestPermission(context.Background(), permission, privilege, doc)
	require.NoError(t, err)
	assert.True(t, granted, "the administrator privilege alone decides every role affirmatively")

	returned, err := RequirePermission(context.Background(), permission, privilege, doc)
	require.NoError(t, err)
	assert.Equal(t, doc, returned)
}

func TestStrangerDeniedPrivateUnsharedEntity(t *testing.T) {
	// A privilege that only recognizes ownership roles and stays silent on
	// everything else.
	ownerOnly := PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		if r, ok := role.(ownedRole); ok {
			return []Approval{NewApproval(r.owner == "eve", r.RoleError())}, nil
		}
		return nil, nil
	})

	doc := entity{id: "doc-2", owner: "alice", public: false}
	permission := readPermission()

	granted, err := TestPermission(context.Background(), permission, ownerOnly, doc)
	require.NoError(t, err)
	assert.False(t, granted)

	approval, err := CheckPermission(context.Background(), permission, ownerOnly, doc)
	require.NoError(t, err)
	assert.False(t, approval.Value)

	// The public and grant branches gave no answer, so the ownership
	// check's denial carries the verdict.
	require.Error(t, approval.Err)
	assert.Contains(t, approval.Err.Error(), "not the owner")
}

func TestStrangerDeniedWithExplicitGrantDenial(t *testing.T) {
	stranger := account{id: "eve"}
	doc := entity{id: "doc-2", owner: "alice", public: false}

	approval, err := CheckPermission(context.Background(), readPermission(), accountPrivilege(stranger), doc)
	require.NoError(t, err)
	assert.False(t, approval.Value)

	// accountPrivilege answers grant roles explicitly, so the grant denial
	// is the first failure seen and carries the verdict.
	require.Error(t, approval.Err)
	assert.Contains(t, approval.Err.Error(), "grant")
}

func TestOwnerReadsPrivateEntity(t *testing.T) {
	owner := account{id: "alice"}
	doc := entity{id: "doc-3", owner: "alice", public: false}

	granted, err := TestPermission(context.Background(), readPermission(), accountPrivilege(owner), doc)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestGranteeReadsSharedPrivateEntity(t *testing.T) {
	grantee := account{id: "bob", grants: map[string][]string{"doc-4": {"read"}}}
	doc := entity{id: "doc-4", owner: "alice", public: false}

	granted, err := TestPermission(context.Background(), readPermission(), accountPrivilege(grantee), doc)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestCachedAccountPrivilegeAcrossChecks(t *testing.T) {
	invocations := 0
	counted := PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		invocations++
		return accountPrivilege(account{id: "alice"}).Invoke(ctx, role)
	})

	cached := NewCachedPrivilege(counted)
	doc := entity{id: "doc-5", owner: "alice", public: false}

	for i := 0; i < 3; i++ {
		granted, err := TestPermission(context.Background(), readPermission(), cached, doc)
		require.NoError(t, err)
		assert.True(t, granted)
	}

	// One grant check and one ownership check, each memoized after the
	// first pass.
	assert.Equal(t, 2, invocations)
}
