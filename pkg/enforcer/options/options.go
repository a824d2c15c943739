//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package options defines the functional options shared by the enforcer's
// construction and evaluation entry points.
package options

import (
	"github.com/cufyorg/openperm/pkg/enforcer/accesslog"
)

// EngineOptions defines the configuration options for initializing an
// enforcer.
type EngineOptions struct {
	AccessLogFactory accesslog.Factory
}

// EngineOptionsFunc is a function that modifies EngineOptions.
type EngineOptionsFunc func(*EngineOptions)

// WithAccessLog configures the audit log stream for the enforcer.
func WithAccessLog(factory accesslog.Factory) EngineOptionsFunc {
	return func(o *EngineOptions) {
		o.AccessLogFactory = factory
	}
}

// CheckOptions represents configuration options for individual Check/Test/
// Require operations.
type CheckOptions struct {
	Probe bool
}

// CheckOptionsFunc is a function that modifies CheckOptions.
type CheckOptionsFunc func(*CheckOptions)

// SetProbeMode configures probe mode for a single evaluation. Probe mode
// evaluates the permission but does not emit an audit record, which is
// helpful for returning information about what capabilities an actor has
// without impacting the audit trail. For instance, a UI can probe whether
// the actor could modify a resource to decide what controls to display;
// it would be unfair to generate an audit record suggesting the actor
// tried to modify the resource when the service was merely testing whether
// they could.
//
// Probe mode is disabled by default. Use with caution and only where you
// are sure the decision doesn't require logging.
func SetProbeMode(probe bool) CheckOptionsFunc {
	return func(o *CheckOptions) {
		o.Probe = probe
	}
}
