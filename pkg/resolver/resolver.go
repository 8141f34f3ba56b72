// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns an entry file into the ordered, named and wrapped
// modules of a bundle.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"hastepack.dev/x/packager/pkg/coremodules"
	"hastepack.dev/x/packager/pkg/graph"
	"hastepack.dev/x/packager/pkg/module"
	"hastepack.dev/x/packager/pkg/namespace"
	"hastepack.dev/x/packager/pkg/polyfill"
	"hastepack.dev/x/packager/pkg/resolver/resolvererrors"
	"hastepack.dev/x/packager/pkg/rewrite"
	"hastepack.dev/x/packager/pkg/wrapper"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotReady   = errors.New("dependency graph is still loading")
	ErrLoadFailed = errors.New("dependency graph failed to load")
)

// Classifiers map the errors of this package and its collaborators to resolution error codes
var Classifiers = []resolvererrors.Classifier{
	{Sentinel: ErrNotReady, Code: resolvererrors.NotReady},
	{Sentinel: ErrLoadFailed, Code: resolvererrors.LoadFailed},
	{Sentinel: ErrInvalidOptions, Code: resolvererrors.InvalidOptions},
	{Sentinel: graph.ErrUnresolved, Code: resolvererrors.UnresolvedModule},
	{Sentinel: namespace.ErrUnqualifiable, Code: resolvererrors.UnqualifiableName},
	{Sentinel: module.ErrDuplicateName, Code: resolvererrors.DuplicateName},
	{Sentinel: wrapper.ErrModuleSyntax, Code: resolvererrors.ModuleSyntax},
}

type Resolver struct {
	opts      Options
	engine    graph.Engine
	qualifier *namespace.Qualifier
	wrapper   *wrapper.Wrapper

	ready   chan struct{}
	loadErr error
}

// New validates opts and starts loading the dependency graph in the
// background. The load stops, and watching ends, when ctx is done.
func New(ctx context.Context, o Options) (*Resolver, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	opts := o.withDefaults()

	if opts.ResetCache {
		if err := opts.Cache.Reset(ctx); err != nil {
			return nil, err
		}
	}

	engine := opts.Engine
	if engine == nil {
		fs, err := graph.NewFS(opts.graphOptions())
		if err != nil {
			return nil, &OptionsError{Problems: []error{err}}
		}
		engine = fs
	}

	r := &Resolver{
		opts:      opts,
		engine:    engine,
		qualifier: namespace.New(opts.AppName, opts.Manifest != nil, opts.ExternalModules),
		wrapper:   wrapper.New(opts.DefineFn, opts.Minify),
		ready:     make(chan struct{}),
	}
	go func() {
		defer close(r.ready)
		if err := engine.Load(ctx); err != nil {
			r.loadErr = fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	}()
	return r, nil
}

// Ready blocks until the dependency graph is loaded and returns the load error.
// A load error is fatal for the resolver.
func (r *Resolver) Ready(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ready:
		return r.loadErr
	}
}

func (r *Resolver) checkReady() error {
	select {
	case <-r.ready:
		return r.loadErr
	default:
		return ErrNotReady
	}
}

// Close stops watching the project roots, if the graph watches them
func (r *Resolver) Close() error {
	if c, ok := r.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Resolver) DependencyGraph() graph.Engine {
	return r.engine
}

type GetDependenciesOptions struct {
	Dev      bool
	Platform string
	// Unbundle selects the module system that loads modules on demand
	Unbundle bool
	// Recursive=false lists only the entry's direct dependencies
	Recursive bool
	// IncludeFramework bundles the polyfills and module system.
	// Without it, modules of the core runtime are left out instead.
	IncludeFramework bool
}

func DefaultGetDependenciesOptions() GetDependenciesOptions {
	return GetDependenciesOptions{Dev: true, Recursive: true}
}

func (o GetDependenciesOptions) transformOptions() graph.TransformOptions {
	return graph.TransformOptions{Dev: o.Dev, Platform: o.Platform}
}

// GetDependencies resolves the modules needed by entryPath, in load order
func (r *Resolver) GetDependencies(ctx context.Context, entryPath string, opts GetDependenciesOptions) (*module.ResolutionResponse, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}

	resp, err := r.engine.GetDependencies(ctx, graph.Query{
		EntryPath:        entryPath,
		Platform:         opts.Platform,
		Recursive:        opts.Recursive,
		TransformOptions: opts.transformOptions(),
	})
	if err != nil {
		return nil, err
	}

	if err := r.nameModules(ctx, resp.Modules()); err != nil {
		return nil, err
	}

	if opts.IncludeFramework {
		if err := r.prependPolyfills(resp); err != nil {
			return nil, err
		}
	} else {
		dropped, err := coremodules.Filter(resp, r.opts.CoreModules)
		if err != nil {
			return nil, err
		}
		if len(dropped) > 0 {
			slog.Debug("left out core modules", "count", len(dropped))
		}
	}

	if _, err := resp.Finalize(); err != nil {
		return nil, err
	}
	for _, m := range resp.Modules() {
		slog.Debug("> " + m.String())
	}
	return resp, nil
}

// nameModules assigns the canonical name of every module, in parallel
func (r *Resolver) nameModules(ctx context.Context, modules []*module.Module) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, m := range modules {
		g.Go(func() error {
			name, err := r.engine.ModuleName(ctx, m)
			if err != nil {
				return fmt.Errorf("naming %q: %w", m.Path, err)
			}
			m.Name = name
			return nil
		})
	}
	return g.Wait()
}

func (r *Resolver) prependPolyfills(resp *module.ResolutionResponse) error {
	files, err := polyfill.Files(r.opts.Cache, r.opts.PolyfillModuleNames)
	if err != nil {
		return err
	}
	polyfills, err := polyfill.Create(r.engine, polyfill.Order(files))
	if err != nil {
		return err
	}
	return polyfill.Prepend(resp, polyfills)
}

// ModuleSystemDependencies returns the prelude and module system to load
// before any bundle. Bundles without the framework get none.
func (r *Resolver) ModuleSystemDependencies(opts GetDependenciesOptions) ([]*module.Module, error) {
	if !opts.IncludeFramework {
		return []*module.Module{}, nil
	}
	files, err := polyfill.ModuleSystemFiles(r.opts.Cache, opts.Dev, opts.Unbundle)
	if err != nil {
		return nil, err
	}
	return polyfill.Create(r.engine, lo.Map(files, func(f string, _ int) module.PolyfillSpec {
		return module.PolyfillSpec{File: f, ID: filepath.Base(f)}
	}))
}

type WrapOptions struct {
	Dev    bool
	Minify bool
}

// WrapModule rewrites the references of m to the emitted names of its
// dependencies and wraps it for the runtime. Polyfills are wrapped as they are.
func (r *Resolver) WrapModule(ctx context.Context, resp *module.ResolutionResponse, m *module.Module, opts WrapOptions) (*wrapper.Result, error) {
	code, sourceMap, err := r.engine.Source(ctx, m)
	if err != nil {
		return nil, err
	}

	name := m.Name
	if !m.IsPolyfill {
		pairs := resp.ResolvedDependencyPairs(m)
		if code, err = rewrite.Requires(code, pairs, m.DependencyOffsets, r.qualifier.Qualify); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		if name, err = r.qualifier.Qualify(m.Name); err != nil {
			return nil, err
		}
	}

	return r.wrapper.Wrap(ctx, wrapper.Input{
		Module: m,
		Name:   name,
		Code:   code,
		Map:    sourceMap,
		Dev:    opts.Dev,
		Minify: opts.Minify,
	})
}

// WrapModules wraps every module of a finalized response in parallel.
// Results are in module ID order.
func (r *Resolver) WrapModules(ctx context.Context, resp *module.ResolutionResponse, opts WrapOptions) ([]*wrapper.Result, error) {
	if !resp.Finalized() {
		return nil, module.ErrNotFinalized
	}

	modules := resp.Modules()
	results := make([]*wrapper.Result, len(modules))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, m := range modules {
		id, err := resp.ModuleID(m)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			res, err := r.WrapModule(ctx, resp, m, opts)
			if err != nil {
				return err
			}
			results[id] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Resolver) MinifyModule(ctx context.Context, path, code, sourceMap string) (*wrapper.Result, error) {
	return r.wrapper.Minify(ctx, path, code, sourceMap)
}

func (r *Resolver) ShallowDependencies(ctx context.Context, path string, opts graph.TransformOptions) ([]string, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}
	return r.engine.ShallowDependencies(ctx, path, opts)
}

func (r *Resolver) Stat(path string) (os.FileInfo, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}
	return r.engine.Stat(path)
}

// ModuleForPath returns the named module of the file at path
func (r *Resolver) ModuleForPath(ctx context.Context, path string) (*module.Module, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}
	m, err := r.engine.ModuleForPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if m.Name, err = r.engine.ModuleName(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
