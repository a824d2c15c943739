//
//  Copyright © Manetu Inc. All rights reserved.
//

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cufyorg/openperm/cmd/openperm/subcommands/simulate"
	"github.com/cufyorg/openperm/cmd/openperm/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "openperm",
		Usage: "A CLI application for working with openperm authorization models",
		Commands: []*cli.Command{
			{
				Name:  "simulate",
				Usage: "Evaluates the checks in a scenario fixture against the document-sharing model and prints one verdict per check",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Load scenario fixture from `FILE`. A built-in fixture is used when omitted.",
					},
					&cli.BoolFlag{
						Name:  "audit",
						Usage: "Emit the audit record of each decision to stderr",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print the decisive reason and suppressed sibling evaluations after each verdict",
					},
				},
				Action: simulate.Execute,
			},
			{
				Name:  "version",
				Usage: "Prints the build version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println(version.GetVersion())
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
