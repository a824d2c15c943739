//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package enforcer binds a composed [openperm.Permission] to an audit
// trail, providing the primary entry point for applications that want
// every authorization decision recorded.
//
// # Quick Start
//
// Create an enforcer for a permission with default options (stdout audit
// log):
//
//	e, err := enforcer.New(readPermission)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
// Make an authorization decision:
//
//	allowed, err := e.Test(ctx, actorPrivilege, document)
//
// # Configuration
//
// The enforcer supports configuration via functional options:
//
//	e, err := enforcer.New(readPermission,
//	    options.WithAccessLog(accesslog.NewIoWriterFactory(auditFile)),
//	)
//
// # Probe Mode
//
// For UI capabilities discovery without impacting audit logs, use probe
// mode:
//
//	allowed, err := e.Test(ctx, privilege, target, options.SetProbeMode(true))
//
// See the [options] package for all available configuration options.
package enforcer

import (
	"context"
	"time"

	"github.com/cufyorg/openperm/internal/logging"
	"github.com/cufyorg/openperm/pkg/enforcer/accesslog"
	"github.com/cufyorg/openperm/pkg/enforcer/config"
	"github.com/cufyorg/openperm/pkg/enforcer/options"
	"github.com/cufyorg/openperm/pkg/openperm"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

var logger = logging.GetLogger("enforcer")

const agent = "enforcer"

// Enforcer evaluates a fixed permission for targets of type T, emitting
// one audit record per decision.
//
// Enforcer values are safe for concurrent use by multiple goroutines.
type Enforcer[T any] struct {
	permission openperm.Permission[T]
	audit      accesslog.Stream

	includeSuppressed bool
	metadata          map[string]string
}

// New creates an enforcer around the given permission.
//
// By default, audit records are written to stdout; configure a production
// destination with [options.WithAccessLog]. New loads configuration from
// environment variables and config files before initializing; see the
// [config] package for details.
func New[T any](permission openperm.Permission[T], engineOptions ...options.EngineOptionsFunc) (*Enforcer[T], error) {
	if err := config.Load(); err != nil {
		return nil, errors.Wrap(err, "error loading config")
	}

	opts := &options.EngineOptions{
		AccessLogFactory: accesslog.NewStdoutFactory(),
	}
	for _, o := range engineOptions {
		o(opts)
	}

	stream, err := opts.AccessLogFactory.NewStream()
	if err != nil {
		return nil, errors.Wrap(err, "error initializing access log")
	}

	return &Enforcer[T]{
		permission:        permission,
		audit:             stream,
		includeSuppressed: config.VConfig.GetBool(config.IncludeSuppressed),
		metadata:          config.GetAuditEnv(),
	}, nil
}

// Check evaluates the permission for the target under the given privilege
// and returns the decisive approval, emitting an audit record unless probe
// mode is set. A denial is reported through the approval, never through
// the error; the error return is reserved for hard evaluator failures,
// which are not audited.
func (e *Enforcer[T]) Check(ctx context.Context, privilege openperm.Privilege, target T, checkOptions ...options.CheckOptionsFunc) (openperm.Approval, error) {
	logger.Debug(agent, "Check", "Enter")
	defer logger.Debug(agent, "Check", "Exit")

	opts := &options.CheckOptions{Probe: false}
	for _, o := range checkOptions {
		o(opts)
	}

	start := time.Now()
	approval, err := openperm.CheckPermission(ctx, e.permission, privilege, target)
	if err != nil {
		return openperm.Approval{}, err
	}

	if !opts.Probe {
		e.send(e.record(approval, time.Since(start)))
	}

	return approval, nil
}

// Test reports whether the permission grants the target under the given
// privilege, with the same audit behavior as [Enforcer.Check].
func (e *Enforcer[T]) Test(ctx context.Context, privilege openperm.Privilege, target T, checkOptions ...options.CheckOptionsFunc) (bool, error) {
	approval, err := e.Check(ctx, privilege, target, checkOptions...)
	if err != nil {
		return false, err
	}
	return approval.Value, nil
}

// Require returns the target unchanged when the permission grants it, and
// the decisive approval's error otherwise (the generic unspecified denial
// when none was attached). Audit behavior matches [Enforcer.Check].
func (e *Enforcer[T]) Require(ctx context.Context, privilege openperm.Privilege, target T, checkOptions ...options.CheckOptionsFunc) (T, error) {
	approval, err := e.Check(ctx, privilege, target, checkOptions...)
	if err != nil {
		return target, err
	}
	if !approval.Value {
		return target, openperm.DenialOf(approval)
	}
	return target, nil
}

// Close releases the underlying audit stream.
func (e *Enforcer[T]) Close() {
	e.audit.Close()
}

func (e *Enforcer[T]) record(approval openperm.Approval, elapsed time.Duration) *accesslog.Record {
	record := &accesslog.Record{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Decision:   approval.Value,
		DurationNs: safeNanos(elapsed),
		Metadata:   deepcopy.Copy(e.metadata).(map[string]string),
	}

	if approval.Err != nil {
		record.Reason = approval.Err.Error()
	}

	if e.includeSuppressed {
		for _, suppressed := range approval.Suppressed {
			record.Suppressed = append(record.Suppressed, renderSuppressed(suppressed))
		}
	}

	return record
}

func (e *Enforcer[T]) send(record *accesslog.Record) {
	if err := e.audit.Send(record); err != nil {
		logger.Errorf(agent, "Check", "failed sending audit record %s: %+v", record.ID, err)
	}
}

func renderSuppressed(approval openperm.Approval) string {
	verdict := "denied"
	if approval.Value {
		verdict = "granted"
	}
	if approval.Err != nil {
		return verdict + ": " + approval.Err.Error()
	}
	return verdict
}

// safeNanos converts a duration to uint64 nanoseconds, clamping negative
// clock skew to zero.
func safeNanos(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d.Nanoseconds())
}
