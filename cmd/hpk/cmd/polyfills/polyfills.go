// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package polyfills

import (
	"fmt"
	"path/filepath"

	"hastepack.dev/x/packager/cmd/hpk/cmd/flags"
	"hastepack.dev/x/packager/pkg/builtincommand"
	"hastepack.dev/x/packager/pkg/cache"
	"hastepack.dev/x/packager/pkg/polyfill"
	"github.com/spf13/cobra"
)

func Cmd(project *flags.Project) *cobra.Command {
	var dev, unbundle, showPaths bool

	cmd := &cobra.Command{
		Use:   string(builtincommand.Polyfills),
		Short: "list the module system and polyfills loaded ahead of a framework bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			config, err := project.Config()
			if err != nil {
				return err
			}
			if err := config.EnsureDirs(); err != nil {
				return err
			}
			c, err := cache.New(config.CachePath)
			if err != nil {
				return err
			}

			moduleSystem, err := polyfill.ModuleSystemFiles(c, dev, unbundle)
			if err != nil {
				return err
			}
			files, err := polyfill.Files(c, config.Polyfills)
			if err != nil {
				return err
			}

			show := func(p string) string {
				if showPaths {
					return p
				}
				return filepath.Base(p)
			}
			for _, f := range moduleSystem {
				cmd.Println(show(f))
			}
			for _, spec := range polyfill.Order(files) {
				cmd.Println(fmt.Sprintf("%s\t(after %d)", show(spec.File), len(spec.Dependencies)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dev, "dev", true, "development build")
	cmd.Flags().BoolVar(&unbundle, "unbundle", false, "use the module system that loads modules on demand")
	cmd.Flags().BoolVar(&showPaths, "paths", false, "print absolute paths")
	return cmd
}
