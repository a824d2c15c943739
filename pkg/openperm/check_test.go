//
//  Copyright © Manetu Inc. All rights reserved.
//

package openperm

import (
	"context"
	"errors"
	"testing"

	"github.com/cufyorg/openperm/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPrivilegeEmptyAnswerDenies(t *testing.T) {
	// With a role-level error present, it wins over the generic reason.
	reason := errors.New("read access required")
	approval, err := CheckPrivilege(context.Background(), EmptyPrivilege(), namedRole{name: "read", err: reason})
	require.NoError(t, err)
	assert.False(t, approval.Value)
	assert.Equal(t, reason, approval.Err)

	// Without one, the generic no-results denial applies.
	approval, err = CheckPrivilege(context.Background(), EmptyPrivilege(), namedRole{name: "read"})
	require.NoError(t, err)
	assert.False(t, approval.Value)
	assert.Equal(t, common.ErrNoResults, approval.Err)
}

func TestCheckPrivilegeReturnsFirstFailureAsIs(t *testing.T) {
	reason := errors.New("nope")
	privilege := ApprovalsPrivilege(
		NewApproval(true, nil),
		NewApproval(false, reason),
		NewApproval(false, errors.New("later failure")),
	)

	approval, err := CheckPrivilege(context.Background(), privilege, namedRole{name: "read"})
	require.NoError(t, err)
	assert.False(t, approval.Value)
	assert.Equal(t, reason, approval.Err)
	assert.Empty(t, approval.Suppressed, "flat reduction tracks no suppression")
}

func TestCheckPrivilegeAllPassingReturnsFirst(t *testing.T) {
	first := NewApproval(true, errors.New("first"))
	privilege := ApprovalsPrivilege(first, NewApproval(true, nil))

	approval, err := CheckPrivilege(context.Background(), privilege, namedRole{name: "read"})
	require.NoError(t, err)
	assert.Equal(t, first, approval)
}

func TestCheckPermissionEmptyDeniesNoResults(t *testing.T) {
	approval, err := CheckPermission(context.Background(), EmptyPermission[string](), EmptyPrivilege(), "doc-1")
	require.NoError(t, err)
	assert.False(t, approval.Value)
	assert.Equal(t, common.ErrNoResults, approval.Err)
}

func TestCheckPermitEmptyChecklistDenies(t *testing.T) {
	approval, err := CheckPermit(context.Background(), EmptyPermit[string](), GrantPrivilege(true), "doc-1")
	require.NoError(t, err)
	assert.False(t, approval.Value)
	assert.Equal(t, common.ErrNoChecklist, approval.Err)
}

func TestCheckPermitFailureSuppressesPriorSuccesses(t *testing.T) {
	read := namedRole{name: "read"}
	write := namedRole{name: "write", err: errors.New("write access required")}
	share := namedRole{name: "share"}

	invoked := []Role{}
	privilege := PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		invoked = append(invoked, role)
		r := role.(namedRole)
		return []Approval{NewApproval(r.name != "write", roleError(role))}, nil
	})

	approval, err := CheckPermit(context.Background(), RolesPermit[string](read, write, share), privilege, "doc-1")
	require.NoError(t, err)

	assert.False(t, approval.Value)
	assert.Equal(t, write.err, approval.Err)

	// The read success was performed before the failure and is retained as
	// a suppressed diagnostic; share was never consulted.
	require.Len(t, approval.Suppressed, 1)
	assert.True(t, approval.Suppressed[0].Value)
	assert.Equal(t, []Role{read, write}, invoked)
}

func TestCheckPermitFailureSuppressesSiblingApprovals(t *testing.T) {
	reason := errors.New("second opinion says no")
	privilege := ApprovalsPrivilege(
		NewApproval(true, nil),
		NewApproval(false, reason),
		NewApproval(true, nil),
	)

	approval, err := CheckPermit(context.Background(), RolesPermit[string](namedRole{name: "read"}), privilege, "doc-1")
	require.NoError(t, err)

	assert.False(t, approval.Value)
	assert.Equal(t, reason, approval.Err)

	// Both non-failing approvals from the same role ride along as
	// diagnostics, in order.
	require.Len(t, approval.Suppressed, 2)
	assert.True(t, approval.Suppressed[0].Value)
	assert.True(t, approval.Suppressed[1].Value)
}

func TestCheckPermitSilentRoleDeniesWithSuccessesSuppressed(t *testing.T) {
	read := namedRole{name: "read"}
	audit := namedRole{name: "audit", err: errors.New("audit trail unavailable")}

	privilege := PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		if role.(namedRole).name == "audit" {
			return nil, nil // no answer at all
		}
		return []Approval{NewApproval(true, nil)}, nil
	})

	approval, err := CheckPermit(context.Background(), RolesPermit[string](read, audit), privilege, "doc-1")
	require.NoError(t, err)

	assert.False(t, approval.Value)
	assert.Equal(t, audit.err, approval.Err)
	require.Len(t, approval.Suppressed, 1)
	assert.True(t, approval.Suppressed[0].Value)
}

func TestCheckPermitAllPassingSuppressesRest(t *testing.T) {
	roles := []Role{namedRole{name: "read"}, namedRole{name: "write"}, namedRole{name: "share"}}

	approval, err := CheckPermit(context.Background(), RolesPermit[string](roles...), GrantPrivilege(true), "doc-1")
	require.NoError(t, err)

	assert.True(t, approval.Value)
	assert.Len(t, approval.Suppressed, 2, "first success carries the rest as diagnostics")
}

func TestRequireAgreesWithTest(t *testing.T) {
	reason := errors.New("write access required")
	role := namedRole{name: "write", err: reason}

	granted, err := TestPrivilege(context.Background(), GrantPrivilege(false), role)
	require.NoError(t, err)
	assert.False(t, granted)

	_, err = RequirePrivilege(context.Background(), GrantPrivilege(false), role)
	assert.ErrorIs(t, err, reason)

	granted, err = TestPrivilege(context.Background(), GrantPrivilege(true), role)
	require.NoError(t, err)
	assert.True(t, granted)

	returned, err := RequirePrivilege(context.Background(), GrantPrivilege(true), role)
	require.NoError(t, err)
	assert.Equal(t, role, returned)
}

func TestRequireFallsBackToUnspecified(t *testing.T) {
	privilege := ApprovalsPrivilege(NewApproval(false, nil))

	_, err := RequirePrivilege(context.Background(), privilege, namedRole{name: "read"})
	require.Error(t, err)

	var denial *common.Denial
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, common.ReasonUnspecified, denial.ReasonCode)
}

func TestRequirePermitReturnsTargetForChaining(t *testing.T) {
	permit := RolesPermit[string](namedRole{name: "read"})

	target, err := RequirePermit(context.Background(), permit, GrantPrivilege(true), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", target)
}

func TestCheckNeverReturnsDenialAsError(t *testing.T) {
	// A denying evaluation still reports err == nil from Check/Test.
	_, err := CheckPermit(context.Background(), ErrorPermit[string](errors.New("always")), GrantPrivilege(false), "doc-1")
	assert.NoError(t, err)

	_, err = TestPermission(context.Background(), GrantPermission[string](false), EmptyPrivilege(), "doc-1")
	assert.NoError(t, err)
}

func TestCheckPermitObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	privilege := &countingPrivilege{approvals: []Approval{NewApproval(true, nil)}}

	_, err := CheckPermit(ctx, RolesPermit[string](namedRole{name: "read"}), privilege, "doc-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, privilege.invocations, "no role is consulted once the context is cancelled")
}

func TestHardEvaluatorFailurePropagates(t *testing.T) {
	boom := errors.New("backend unavailable")
	privilege := PrivilegeFunc(func(ctx context.Context, role Role) ([]Approval, error) {
		return nil, boom
	})

	_, err := CheckPermit(context.Background(), RolesPermit[string](namedRole{name: "read"}), privilege, "doc-1")
	assert.ErrorIs(t, err, boom)

	_, err = TestPrivilege(context.Background(), privilege, namedRole{name: "read"})
	assert.ErrorIs(t, err, boom)
}
