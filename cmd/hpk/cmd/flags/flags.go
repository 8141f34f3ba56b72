// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package flags holds the flags shared by several hpk commands
package flags

import (
	"hastepack.dev/x/packager/pkg/packagerconfig"
	"hastepack.dev/x/packager/pkg/resolver"
	"github.com/spf13/cobra"
)

type Project struct {
	Dir string
}

func (p *Project) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&p.Dir, "project-dir", "C", ".", "directory of the project to bundle")
}

// Config loads the config of the selected project
func (p *Project) Config() (*packagerconfig.Config, error) {
	return packagerconfig.Get(p.Dir)
}

type Build struct {
	Platform         string
	Dev              bool
	IncludeFramework bool
	Unbundle         bool
	NoRecursive      bool

	cmd *cobra.Command
}

func (b *Build) Register(cmd *cobra.Command) {
	b.cmd = cmd
	cmd.Flags().StringVar(&b.Platform, "platform", "", "target platform, e.g. ios or android (default from config)")
	cmd.Flags().BoolVar(&b.Dev, "dev", true, "development build")
	cmd.Flags().BoolVar(&b.IncludeFramework, "framework", false, "include polyfills and the module system instead of leaving out core modules")
	cmd.Flags().BoolVar(&b.Unbundle, "unbundle", false, "use the module system that loads modules on demand")
	cmd.Flags().BoolVar(&b.NoRecursive, "no-recursive", false, "list only the direct dependencies of the entry file")
}

// Options merges the flags over config
func (b *Build) Options(config *packagerconfig.Config) resolver.GetDependenciesOptions {
	platform := config.Platform
	if b.cmd != nil && b.cmd.Flags().Changed("platform") {
		platform = b.Platform
	}
	return resolver.GetDependenciesOptions{
		Dev:              b.Dev,
		Platform:         platform,
		Unbundle:         b.Unbundle,
		Recursive:        !b.NoRecursive,
		IncludeFramework: b.IncludeFramework,
	}
}
