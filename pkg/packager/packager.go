// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package packager wires configuration into a resolver for the hpk CLI
package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"hastepack.dev/x/packager/pkg/cache"
	"hastepack.dev/x/packager/pkg/packagerconfig"
	"hastepack.dev/x/packager/pkg/packagerversion"
	"hastepack.dev/x/packager/pkg/resolver"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var ErrIncompatibleManifest = errors.New("manifest requires a different hpk version")

type Packager struct {
	Stderr, Stdout io.Writer
	Stdin          io.Reader
	// must contain at least one argument, namely the hpk binary name, similar to os.Args
	OsArgs []string
}

func (p *Packager) SetOutputStreams(cmd *cobra.Command) {
	cmd.SetOut(p.Stdout)
	cmd.SetErr(p.Stderr)
	cmd.SetIn(p.Stdin)

	lo.ForEach(cmd.Commands(), func(sub *cobra.Command, _ int) {
		p.SetOutputStreams(sub)
	})
}

// ResolverOptions reads everything config refers to and returns the options of a resolver for it
func ResolverOptions(config *packagerconfig.Config) (resolver.Options, error) {
	if err := config.EnsureDirs(); err != nil {
		return resolver.Options{}, err
	}
	c, err := cache.New(config.CachePath)
	if err != nil {
		return resolver.Options{}, err
	}

	blacklist, err := config.BlacklistRegexp()
	if err != nil {
		return resolver.Options{}, err
	}

	m, err := config.ReadManifest()
	if err != nil {
		return resolver.Options{}, err
	}
	if m != nil && m.Spec.Packager != "" {
		ok, err := packagerversion.Satisfies(m.Spec.Packager)
		if err != nil {
			return resolver.Options{}, err
		}
		if !ok {
			return resolver.Options{}, fmt.Errorf("%w: %s wants %q, this is %s",
				ErrIncompatibleManifest, m.String(), m.Spec.Packager, packagerversion.Get().Version)
		}
	}

	core, err := config.ReadCoreModules()
	if err != nil {
		return resolver.Options{}, err
	}

	appName, err := config.ResolveAppName()
	if err != nil {
		return resolver.Options{}, err
	}
	if appName == "" && m != nil {
		slog.Warn("a manifest is configured but the application has no package name, namespaced modules can't be emitted")
	}

	return resolver.Options{
		ProjectRoots:        config.Roots,
		Blacklist:           blacklist,
		PolyfillModuleNames: config.Polyfills,
		AssetRoots:          config.AssetRoots,
		AssetExts:           config.AssetExts,
		Platforms:           config.Platforms,
		Watch:               config.Watch,
		Cache:               c,
		TransformCacheKey:   config.TransformCacheKey,
		ExtraNodeModules:    config.ExtraNodeModules,
		ResetCache:          config.ResetCache,
		Manifest:            m,
		ExternalModules:     config.ExternalModulesAllowList(),
		CoreModules:         core,
		AppName:             appName,
		DefineFn:            config.DefineFn,
	}, nil
}

// NewResolver builds a resolver for config and waits for its graph to load
func NewResolver(ctx context.Context, config *packagerconfig.Config) (*resolver.Resolver, error) {
	opts, err := ResolverOptions(config)
	if err != nil {
		return nil, err
	}
	r, err := resolver.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := r.Ready(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to load the dependency graph", "error", err)
		r.Close()
		return nil, err
	}
	return r, nil
}
