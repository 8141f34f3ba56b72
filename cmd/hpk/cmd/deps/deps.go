// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package deps

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"hastepack.dev/x/packager/cmd/hpk/cmd/flags"
	"hastepack.dev/x/packager/pkg/builtincommand"
	"hastepack.dev/x/packager/pkg/packager"
	"hastepack.dev/x/packager/pkg/packagerconfig"
	"hastepack.dev/x/packager/pkg/report"
	"hastepack.dev/x/packager/pkg/resolver"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	entryColor    = color.New(color.FgGreen, color.Bold)
	polyfillColor = color.New(color.Faint)
	moduleColor   = color.New(color.Reset)
)

func Cmd(project *flags.Project) *cobra.Command {
	var build flags.Build
	var output string

	cmd := &cobra.Command{
		Use:   string(builtincommand.Deps) + " <entry file>",
		Short: "list the modules of a bundle in load order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			config, err := project.Config()
			if err != nil {
				return err
			}
			entry, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			opts := build.Options(config)

			r, err := resolve(cmd.Context(), config, entry, opts)
			if err != nil {
				if format == report.YAML {
					// machine readable failure, the error is still returned for the exit code
					out, renderErr := report.Failed(err, entry, opts.Platform, resolver.Classifiers...).Render(format)
					if renderErr == nil {
						cmd.Print(out)
					}
				}
				return err
			}

			if format == report.List {
				printList(cmd.OutOrStdout(), r)
				return nil
			}
			out, err := r.Render(format)
			if err != nil {
				return err
			}
			cmd.Println(out)
			return nil
		},
	}

	build.Register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", string(report.Table), fmt.Sprintf("output format, one of %v", report.Formats))
	return cmd
}

func resolve(ctx context.Context, config *packagerconfig.Config, entry string, opts resolver.GetDependenciesOptions) (*report.Report, error) {
	r, err := packager.NewResolver(ctx, config)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	resp, err := r.GetDependencies(ctx, entry, opts)
	if err != nil {
		return nil, err
	}
	return report.New(resp, entry, opts.Platform)
}

// printList writes one "> name" line per module
func printList(w io.Writer, r *report.Report) {
	for _, e := range r.Modules {
		c := moduleColor
		switch {
		case e.Path == r.EntryPoint:
			c = entryColor
		case e.Kind == report.KindPolyfill:
			c = polyfillColor
		}
		fmt.Fprintln(w, c.Sprint("> "+e.Name))
	}
}
