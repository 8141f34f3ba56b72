// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wrap

import (
	"path/filepath"

	"hastepack.dev/x/packager/cmd/hpk/cmd/flags"
	"hastepack.dev/x/packager/pkg/builtincommand"
	"hastepack.dev/x/packager/pkg/packager"
	"hastepack.dev/x/packager/pkg/resolver"
	"github.com/spf13/cobra"
)

func Cmd(project *flags.Project) *cobra.Command {
	var build flags.Build
	var minify bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Wrap) + " <entry file>",
		Short: "print the module system and every module of a bundle, wrapped for the runtime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			config, err := project.Config()
			if err != nil {
				return err
			}
			entry, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			opts := build.Options(config)

			r, err := packager.NewResolver(ctx, config)
			if err != nil {
				return err
			}
			defer r.Close()

			resp, err := r.GetDependencies(ctx, entry, opts)
			if err != nil {
				return err
			}
			moduleSystem, err := r.ModuleSystemDependencies(opts)
			if err != nil {
				return err
			}

			wrapOpts := resolver.WrapOptions{Dev: opts.Dev, Minify: minify}
			for _, m := range moduleSystem {
				res, err := r.WrapModule(ctx, resp, m, wrapOpts)
				if err != nil {
					return err
				}
				cmd.Println(res.Code)
			}

			results, err := r.WrapModules(ctx, resp, wrapOpts)
			if err != nil {
				return err
			}
			for _, res := range results {
				cmd.Println(res.Code)
			}
			return nil
		},
	}

	build.Register(cmd)
	cmd.Flags().BoolVar(&minify, "minify", false, "minify every wrapped module")
	return cmd
}
