// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"hastepack.dev/x/packager/pkg/cache"
	"hastepack.dev/x/packager/pkg/coremodules"
	"hastepack.dev/x/packager/pkg/graph"
	"hastepack.dev/x/packager/pkg/manifest"
	"hastepack.dev/x/packager/pkg/minify"
	"hastepack.dev/x/packager/pkg/utils"
	"hastepack.dev/x/packager/pkg/wrapper"
	"github.com/samber/lo"
)

var ErrInvalidOptions = errors.New("invalid resolver options")

// OptionsError lists every problem found while validating Options
type OptionsError struct {
	Problems []error
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidOptions.Error(), errors.Join(e.Problems...).Error())
}

func (e *OptionsError) Unwrap() error {
	return ErrInvalidOptions
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

type Options struct {
	// ProjectRoots are crawled for modules. Required.
	ProjectRoots []string
	// Blacklist excludes matching paths from the graph
	Blacklist *regexp.Regexp
	// PolyfillModuleNames are loaded after the built-in polyfills, in order
	PolyfillModuleNames []string
	AssetRoots          []string
	// AssetExts are the extensions of asset modules, e.g. "png". Required.
	AssetExts []string
	Platforms []string
	Watch     bool
	// Cache holds transform results and built-in polyfills. Required.
	Cache             *cache.Cache
	Transform         graph.TransformFunc
	TransformCacheKey string
	ExtraNodeModules  map[string]string
	Minify            wrapper.MinifyFunc
	ResetCache        bool

	// Manifest enables namespace qualification
	Manifest *manifest.Manifest
	// ExternalModules are never namespace qualified. Merged with the manifest's list.
	ExternalModules map[string]bool
	CoreModules     *coremodules.List
	// AppName is the package name of the application being bundled
	AppName  string
	DefineFn string

	// Engine replaces the filesystem graph built from the options above
	Engine graph.Engine
}

func (o *Options) validate() error {
	var problems []error
	if len(o.ProjectRoots) == 0 {
		problems = append(problems, fmt.Errorf("at least one project root is required"))
	}
	for _, r := range o.ProjectRoots {
		if !filepath.IsAbs(r) {
			problems = append(problems, fmt.Errorf("project root %q is not absolute", r))
			continue
		}
		if ok, err := utils.DirExists(r); err != nil || !ok {
			problems = append(problems, fmt.Errorf("project root %q is not a directory", r))
		}
	}
	if len(o.AssetExts) == 0 {
		problems = append(problems, fmt.Errorf("asset extensions are required"))
	}
	if o.Cache == nil {
		problems = append(problems, fmt.Errorf("a cache is required"))
	}
	if o.DefineFn != "" && !identifierRE.MatchString(o.DefineFn) {
		problems = append(problems, fmt.Errorf("define function %q is not a valid identifier", o.DefineFn))
	}
	for _, ext := range o.AssetExts {
		if strings.ContainsAny(ext, `/\`) {
			problems = append(problems, fmt.Errorf("asset extension %q must not contain path separators", ext))
		}
	}

	if len(problems) > 0 {
		return &OptionsError{Problems: problems}
	}
	return nil
}

func (o *Options) withDefaults() Options {
	opts := *o
	if opts.Minify == nil {
		opts.Minify = minify.JS
	}
	if opts.DefineFn == "" {
		opts.DefineFn = wrapper.DefaultDefineFn
	}
	// core modules are provided by the shared runtime under their own names
	core := lo.SliceToMap(opts.CoreModules.Names(), func(n string) (string, bool) { return n, true })
	opts.ExternalModules = lo.Assign(opts.Manifest.ExternalModules(), core, opts.ExternalModules)
	return opts
}

func (o *Options) graphOptions() graph.Options {
	return graph.Options{
		Roots:             o.ProjectRoots,
		AssetRoots:        o.AssetRoots,
		AssetExts:         o.AssetExts,
		Platforms:         o.Platforms,
		Blacklist:         o.Blacklist,
		ExtraNodeModules:  o.ExtraNodeModules,
		Cache:             o.Cache,
		Transform:         o.Transform,
		TransformCacheKey: o.TransformCacheKey,
		Watch:             o.Watch,
	}
}
