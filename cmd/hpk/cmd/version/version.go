// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"

	"hastepack.dev/x/packager/pkg/builtincommand"
	"hastepack.dev/x/packager/pkg/packagerversion"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var ErrUnsatisfied = fmt.Errorf("hpk version does not satisfy the constraint")

func Cmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   string(builtincommand.Version),
		Short: "show the hpk version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				ok, err := packagerversion.Satisfies(check)
				if err != nil {
					return err
				}
				if !ok {
					cmd.SilenceUsage = true
					return fmt.Errorf("%w %q", ErrUnsatisfied, check)
				}
			}

			out, err := yaml.Marshal(packagerversion.Get())
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&check, "check", "", "fail unless this build satisfies the semver constraint")
	return cmd
}
