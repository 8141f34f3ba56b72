// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"hastepack.dev/x/packager/cmd/hpk/cmd/deps"
	"hastepack.dev/x/packager/cmd/hpk/cmd/flags"
	"hastepack.dev/x/packager/cmd/hpk/cmd/polyfills"
	"hastepack.dev/x/packager/cmd/hpk/cmd/version"
	"hastepack.dev/x/packager/cmd/hpk/cmd/wrap"
	"hastepack.dev/x/packager/pkg/logging"
	"hastepack.dev/x/packager/pkg/packager"
	"hastepack.dev/x/packager/pkg/packagerversion"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const (
	bundleGroupId = "bundle"
	metaGroupId   = "meta"
	HpkName       = "hpk"
)

func RootCmd(ctx context.Context, p *packager.Packager) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   HpkName,
		Short: "resolve, name and wrap the modules of a JavaScript bundle",
	}

	defer p.SetOutputStreams(cmd)

	if len(p.OsArgs) == 0 {
		return nil, fmt.Errorf("Packager.OsArgs must contain at least one entry similar to os.Args")
	}

	cmd.SetArgs(p.OsArgs[1:])
	cmd.AddGroup(&cobra.Group{
		ID:    bundleGroupId,
		Title: "Bundle Commands",
	})
	cmd.AddGroup(&cobra.Group{
		ID:    metaGroupId,
		Title: "Meta Commands",
	})

	if err := logging.InitLogging(); err != nil {
		return nil, err
	}

	var project flags.Project
	project.Register(cmd)

	cmd.AddCommand(
		withGroup(deps.Cmd(&project), bundleGroupId),
		withGroup(wrap.Cmd(&project), bundleGroupId),
		withGroup(polyfills.Cmd(&project), bundleGroupId),
		withGroup(version.Cmd(), metaGroupId),
	)

	v, err := yaml.Marshal(packagerversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(v)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}

func withGroup(cmd *cobra.Command, groupId string) *cobra.Command {
	cmd.GroupID = groupId
	return cmd
}
