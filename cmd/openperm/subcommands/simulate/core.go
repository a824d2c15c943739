//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package simulate runs authorization decisions over a YAML fixture of
// accounts, entities, and grants, using the same evaluator composition an
// embedding application would write.
package simulate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cufyorg/openperm/pkg/common"
	"github.com/cufyorg/openperm/pkg/enforcer"
	"github.com/cufyorg/openperm/pkg/enforcer/accesslog"
	"github.com/cufyorg/openperm/pkg/enforcer/options"
	"github.com/cufyorg/openperm/pkg/openperm"
	"github.com/urfave/cli/v3"
)

// Execute runs every check in the fixture and prints one verdict line per
// check to the given writer.
func Execute(ctx context.Context, cmd *cli.Command) error {
	fixture, err := loadFixture(cmd.String("file"))
	if err != nil {
		return err
	}

	var factory accesslog.Factory = accesslog.NewNullFactory()
	if cmd.Bool("audit") {
		factory = accesslog.NewIoWriterFactoryWithOptions(os.Stderr, accesslog.Options{PrettyPrint: true})
	}

	return run(ctx, fixture, factory, os.Stdout, cmd.Bool("verbose"))
}

func loadFixture(path string) (*Fixture, error) {
	if path == "" {
		return ParseFixture([]byte(builtinFixture))
	}

	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, err
	}
	return ParseFixture(data)
}

func run(ctx context.Context, fixture *Fixture, factory accesslog.Factory, out io.Writer, verbose bool) error {
	accounts := make(map[string]Account, len(fixture.Accounts))
	for _, account := range fixture.Accounts {
		accounts[account.ID] = account
	}
	entities := make(map[string]Entity, len(fixture.Entities))
	for _, entity := range fixture.Entities {
		entities[entity.ID] = entity
	}

	// One privilege per account, so cached role answers carry across checks.
	privileges := make(map[string]openperm.Privilege, len(accounts))
	for id, account := range accounts {
		privileges[id] = accountPrivilege(account)
	}

	enforcers := make(map[string]*enforcer.Enforcer[Entity])
	defer func() {
		for _, e := range enforcers {
			e.Close()
		}
	}()

	for _, check := range fixture.Checks {
		operation := check.Operation
		if operation == "" {
			operation = "read"
		}

		e, ok := enforcers[operation]
		if !ok {
			permission, err := operationPermission(operation)
			if err != nil {
				return err
			}
			e, err = enforcer.New(permission, options.WithAccessLog(factory))
			if err != nil {
				return err
			}
			enforcers[operation] = e
		}

		approval, err := e.Check(ctx, privileges[check.Actor], entities[check.Entity])
		if err != nil {
			return fmt.Errorf("check %s %s as %s: %w", operation, check.Entity, check.Actor, err)
		}

		fmt.Fprintln(out, renderVerdict(check.Actor, operation, check.Entity, approval))
		if verbose {
			common.PrettyPrint(out, diagnosticsOf(approval))
		}
	}

	return nil
}

// diagnostics is the per-check detail printed in verbose mode: the decisive
// reason plus the suppressed sibling evaluations.
type diagnostics struct {
	Reason     string   `json:"reason,omitempty"`
	Suppressed []string `json:"suppressed,omitempty"`
}

func diagnosticsOf(approval openperm.Approval) diagnostics {
	var d diagnostics
	if approval.Err != nil {
		d.Reason = approval.Err.Error()
	}
	for _, suppressed := range approval.Suppressed {
		verdict := "denied"
		if suppressed.Value {
			verdict = "granted"
		}
		if suppressed.Err != nil {
			verdict += ": " + suppressed.Err.Error()
		}
		d.Suppressed = append(d.Suppressed, verdict)
	}
	return d
}

func renderVerdict(actor, operation, entityID string, approval openperm.Approval) string {
	if approval.Value {
		return fmt.Sprintf("%s %s %s: GRANTED", actor, operation, entityID)
	}
	return fmt.Sprintf("%s %s %s: DENIED (%v)", actor, operation, entityID, openperm.DenialOf(approval))
}
