//
//  Copyright © Manetu Inc. All rights reserved.
//

package openperm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressEmptyIsIdentity(t *testing.T) {
	approval := NewApproval(true, nil)
	assert.Equal(t, approval, approval.Suppress())
}

func TestSuppressAppends(t *testing.T) {
	first := NewApproval(true, nil)
	second := NewApproval(false, errors.New("denied"))
	third := NewApproval(true, nil)

	suppressed := first.Suppress(second)
	assert.True(t, suppressed.Value)
	assert.Equal(t, []Approval{second}, suppressed.Suppressed)

	again := suppressed.Suppress(third)
	assert.Equal(t, []Approval{second, third}, again.Suppressed)
}

func TestSuppressDoesNotMutateReceiver(t *testing.T) {
	original := NewApproval(true, nil)
	_ = original.Suppress(NewApproval(false, nil))

	assert.Empty(t, original.Suppressed)
}

func TestSuppressPreservesVerdictAndError(t *testing.T) {
	reason := errors.New("not the owner")
	denial := NewApproval(false, reason)

	suppressed := denial.Suppress(NewApproval(true, nil))
	assert.False(t, suppressed.Value)
	assert.Equal(t, reason, suppressed.Err)
}
