//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package common provides shared types and utilities used across the
// openperm packages.
//
// # Error Handling
//
// The [Denial] type provides structured error information for
// authorization failures, including reason codes suitable for audit
// records.
package common

import (
	"fmt"
)

// ReasonCode classifies a denial for audit records and programmatic handling.
type ReasonCode int

// Well-known denial reason codes.
const (
	// ReasonUnspecified indicates a denial where no more specific error was
	// attached anywhere along the evaluation.
	ReasonUnspecified ReasonCode = iota

	// ReasonNoResults indicates an evaluator produced zero approvals where
	// at least one was expected.
	ReasonNoResults

	// ReasonNoChecklist indicates an evaluator produced zero roles or had
	// zero members where at least one was expected.
	ReasonNoChecklist
)

var reasonNames = map[ReasonCode]string{
	ReasonUnspecified: "UNSPECIFIED",
	ReasonNoResults:   "NO_RESULTS",
	ReasonNoChecklist: "NO_CHECKLIST",
}

// String returns the machine-readable name of the reason code.
func (c ReasonCode) String() string {
	if name, ok := reasonNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ReasonCode(%d)", int(c))
}

// Denial represents an authorization failure.
//
// Denial provides structured error information that can be included in
// audit records. It carries both a machine-readable reason code and a
// human-readable message.
//
// Denial is the generic error kind used by the evaluation protocol when no
// application-supplied error is available; role- and approval-level errors
// take precedence over a generic Denial whenever present.
type Denial struct {
	// ReasonCode is the machine-readable classification for audit records.
	ReasonCode ReasonCode
	// Reason is a human-readable description of the denial.
	Reason string
}

// Error implements the error interface, returning a formatted string
// containing both the reason message and the reason code.
func (e *Denial) Error() string {
	return fmt.Sprintf("%s(code-%s)", e.Reason, e.ReasonCode)
}

// NewDenial creates a new [Denial] with the specified reason code and message.
func NewDenial(code ReasonCode, msg string) *Denial {
	return &Denial{ReasonCode: code, Reason: msg}
}

// Sentinel denials used by the evaluation protocol. These are shared
// immutable values.
var (
	// ErrUnspecified is returned by Require when an evaluation denied
	// without attaching any error.
	ErrUnspecified = NewDenial(ReasonUnspecified, "access denied for unspecified reasons")

	// ErrNoResults is used when an evaluator yields no approvals at all.
	ErrNoResults = NewDenial(ReasonNoResults, "evaluation produced no results")

	// ErrNoChecklist is used when an evaluation has no roles or members to
	// consult.
	ErrNoChecklist = NewDenial(ReasonNoChecklist, "evaluation produced no checklist")
)
