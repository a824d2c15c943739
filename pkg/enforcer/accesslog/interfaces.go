//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package accesslog provides interfaces and implementations for audit
// logging of authorization decisions.
//
// Access logs record every decision made by an enforcer, creating an audit
// trail for compliance, debugging, and security monitoring. Each record
// includes the decision outcome, the decisive reason, any suppressed
// sibling evaluations, and timing information.
//
// # Built-in Implementations
//
// The package provides several stream implementations:
//   - [NewStdoutFactory]: Writes JSON records to stdout (default)
//   - [NewIoWriterFactory]: Writes JSON records to any io.Writer
//   - [NewNullFactory]: Discards all records
//   - [NewChannelFactory]: Delivers records to a channel (testing)
//
// # Custom Implementations
//
// To implement a custom access log (e.g., for Kafka, a database, or cloud
// logging), implement [Factory] to create stream instances and [Stream] to
// handle record delivery, then pass the factory via options.WithAccessLog
// when creating the enforcer.
package accesslog

import (
	"time"
)

// Record is one audit entry describing a single authorization decision.
type Record struct {
	// ID uniquely identifies the decision for correlation.
	ID string `json:"id"`

	// Timestamp is when the decision completed.
	Timestamp time.Time `json:"timestamp"`

	// Decision is the verdict: true granted, false denied.
	Decision bool `json:"decision"`

	// Reason is the decisive approval's error text, if any.
	Reason string `json:"reason,omitempty"`

	// Suppressed lists the sibling evaluations performed along the way,
	// rendered as "granted"/"denied" with their reason text. Diagnostic
	// only; never part of the verdict.
	Suppressed []string `json:"suppressed,omitempty"`

	// DurationNs is the evaluation wall time in nanoseconds.
	DurationNs uint64 `json:"duration_ns"`

	// Metadata carries deployment context resolved from the audit.env
	// configuration (e.g. pod name, region).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Factory creates access log [Stream] instances.
//
// Early initialization (validating configuration) should happen during
// factory construction; late initialization (opening connections) should
// happen in NewStream. The enforcer guarantees that configuration is fully
// loaded before NewStream is called.
type Factory interface {
	// NewStream creates a new access log stream, ready to receive records.
	NewStream() (Stream, error)
}

// Stream is the interface for sending audit records to a destination.
//
// Implementations must be safe for concurrent use; the enforcer may call
// Send from multiple goroutines simultaneously. Send must not retain or
// modify the record.
type Stream interface {
	// Send delivers a record to the audit destination. The enforcer logs
	// send errors but does not retry.
	Send(record *Record) error

	// Close releases any resources held by the stream, flushing buffered
	// records first. The stream must not be used after Close.
	Close()
}
