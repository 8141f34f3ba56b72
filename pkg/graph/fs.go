// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"hastepack.dev/x/packager/pkg/cache"
	"hastepack.dev/x/packager/pkg/module"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

const testsDir = "__tests__"

// DefaultPlatforms are the platform suffixes recognized in file names
var DefaultPlatforms = []string{"ios", "android", "web"}

type Options struct {
	Roots      []string
	AssetRoots []string
	// AssetExts lists asset file extensions, without the leading dot
	AssetExts []string
	Platforms []string
	// Blacklist excludes matching paths from the graph
	Blacklist *regexp.Regexp
	// ExtraNodeModules maps package names to directories, taking precedence over node_modules
	ExtraNodeModules map[string]string

	Cache             *cache.Cache
	Transform         TransformFunc
	TransformCacheKey string

	Watch                   bool
	ShouldThrowOnUnresolved func(path, platform string) bool
}

// FS is an Engine over the files below the project and asset roots
type FS struct {
	opts      Options
	assetExts map[string]bool

	mu     sync.RWMutex
	loaded bool
	files  map[string]os.FileInfo

	transforms *transformCache
	namer      *namer
	watcher    *fsnotify.Watcher
}

var _ Engine = (*FS)(nil)

func NewFS(opts Options) (*FS, error) {
	if len(opts.Roots) == 0 {
		return nil, fmt.Errorf("at least one project root is required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("a cache is required")
	}
	opts.Roots = lo.Map(opts.Roots, func(r string, _ int) string { return filepath.Clean(r) })
	opts.AssetRoots = lo.Map(opts.AssetRoots, func(r string, _ int) string { return filepath.Clean(r) })
	if len(opts.Platforms) == 0 {
		opts.Platforms = DefaultPlatforms
	}
	if opts.Transform == nil {
		opts.Transform = IdentityTransform
	}
	if opts.ShouldThrowOnUnresolved == nil {
		opts.ShouldThrowOnUnresolved = ShouldThrowOnUnresolved
	}

	g := &FS{
		opts: opts,
		assetExts: lo.SliceToMap(opts.AssetExts, func(e string) (string, bool) {
			return "." + strings.TrimPrefix(e, "."), true
		}),
		files: make(map[string]os.FileInfo),
	}
	g.transforms = newTransformCache(opts.Cache, opts.Transform, opts.TransformCacheKey)
	g.namer = newNamer(g, opts.Roots)
	return g, nil
}

// Load crawls every root and, with Watch set, keeps the index current until ctx is done
func (g *FS) Load(ctx context.Context) error {
	files := make(map[string]os.FileInfo)
	var dirs []string
	for _, root := range lo.Uniq(append(g.opts.Roots, g.opts.AssetRoots...)) {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if g.ignored(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				dirs = append(dirs, p)
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			files[p] = info
			return nil
		})
		if err != nil {
			return fmt.Errorf("crawling %q: %w", root, err)
		}
	}
	slog.Debug("crawled project roots", "roots", g.opts.Roots, "files", len(files))

	g.mu.Lock()
	g.files = files
	g.loaded = true
	g.mu.Unlock()

	if g.opts.Watch {
		return g.watch(ctx, dirs)
	}
	return nil
}

// Close stops watching for changes
func (g *FS) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.watcher == nil {
		return nil
	}
	err := g.watcher.Close()
	g.watcher = nil
	return err
}

func (g *FS) ignored(p string) bool {
	if strings.Contains(filepath.ToSlash(p), testsDir) {
		return true
	}
	return g.opts.Blacklist != nil && g.opts.Blacklist.MatchString(filepath.ToSlash(p))
}

func (g *FS) isLoaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// underRoot reports whether p is inside a crawled root
func (g *FS) underRoot(p string) bool {
	return lo.SomeBy(append(g.opts.Roots, g.opts.AssetRoots...), func(r string) bool {
		return p == r || strings.HasPrefix(p, r+string(filepath.Separator))
	})
}

// Stat answers from the crawl index for files under the roots and from the filesystem otherwise
func (g *FS) Stat(path string) (os.FileInfo, error) {
	path = filepath.Clean(path)
	if g.underRoot(path) {
		g.mu.RLock()
		info, ok := g.files[path]
		g.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return info, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (g *FS) isFile(path string) bool {
	if g.ignored(path) {
		return false
	}
	info, err := g.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (g *FS) isDir(path string) bool {
	if g.ignored(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (g *FS) isAsset(path string) bool {
	return g.assetExts[filepath.Ext(path)]
}

func (g *FS) ModuleForPath(ctx context.Context, path string) (*module.Module, error) {
	if !g.isLoaded() {
		return nil, ErrNotLoaded
	}
	return g.moduleForPath(ctx, filepath.Clean(path), TransformOptions{Dev: true})
}

func (g *FS) moduleForPath(ctx context.Context, path string, opts TransformOptions) (*module.Module, error) {
	if !g.isFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	switch {
	case g.isAsset(path):
		code, err := g.assetCode(path)
		if err != nil {
			return nil, err
		}
		return &module.Module{Path: path, Code: code, IsAsset: true}, nil
	case filepath.Ext(path) == ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &module.Module{Path: path, Code: string(data), IsJSON: true}, nil
	}

	t, err := g.transforms.get(ctx, g, path, opts)
	if err != nil {
		return nil, err
	}
	return &module.Module{
		Path:              path,
		Code:              t.Code,
		Map:               t.Map,
		Dependencies:      t.Dependencies,
		DependencyOffsets: t.DependencyOffsets,
	}, nil
}

func (g *FS) ShallowDependencies(ctx context.Context, path string, opts TransformOptions) ([]string, error) {
	if !g.isLoaded() {
		return nil, ErrNotLoaded
	}
	m, err := g.moduleForPath(ctx, filepath.Clean(path), opts)
	if err != nil {
		return nil, err
	}
	return m.Dependencies, nil
}

// CreatePolyfill reads the polyfill source without transforming it
func (g *FS) CreatePolyfill(spec module.PolyfillSpec) (*module.Module, error) {
	data, err := os.ReadFile(spec.File)
	if err != nil {
		return nil, err
	}
	return &module.Module{
		Path:         filepath.Clean(spec.File),
		Name:         spec.ID,
		Code:         string(data),
		Dependencies: spec.Dependencies,
		IsPolyfill:   true,
	}, nil
}

func (g *FS) Source(_ context.Context, m *module.Module) (string, string, error) {
	return m.Code, m.Map, nil
}

func (g *FS) ModuleName(ctx context.Context, m *module.Module) (string, error) {
	if m.IsPolyfill {
		return m.Name, nil
	}
	return g.namer.name(m)
}

// GetDependencies walks the graph depth first from the entry, in reference order.
// Every path maps to a single Module within one response.
func (g *FS) GetDependencies(ctx context.Context, q Query) (*module.ResolutionResponse, error) {
	if !g.isLoaded() {
		return nil, ErrNotLoaded
	}

	loaded := map[string]*module.Module{}
	load := func(path string) (*module.Module, error) {
		if m, ok := loaded[path]; ok {
			return m, nil
		}
		m, err := g.moduleForPath(ctx, path, q.TransformOptions)
		if err != nil {
			return nil, err
		}
		loaded[path] = m
		return m, nil
	}

	entry, err := load(filepath.Clean(q.EntryPath))
	if err != nil {
		return nil, err
	}

	resp := module.NewResolutionResponse()
	visited := map[string]bool{}
	var visit func(m *module.Module, expand bool) error
	visit = func(m *module.Module, expand bool) error {
		if visited[m.Path] {
			return nil
		}
		visited[m.Path] = true
		if err := resp.Add(m); err != nil {
			return err
		}
		if !expand {
			return nil
		}

		pairs := make([]module.DependencyPair, 0, len(m.Dependencies))
		var children []*module.Module
		for _, ref := range m.Dependencies {
			target, err := g.resolve(m.Path, ref, q.Platform)
			if err != nil {
				if g.opts.ShouldThrowOnUnresolved(m.Path, q.Platform) {
					return err
				}
				slog.Debug("leaving reference unresolved", "from", m.Path, "ref", ref)
				pairs = append(pairs, module.DependencyPair{Reference: ref})
				continue
			}
			dep, err := load(target)
			if err != nil {
				return err
			}
			pairs = append(pairs, module.DependencyPair{Reference: ref, Module: dep})
			children = append(children, dep)
		}
		if err := resp.SetMapping(m, pairs); err != nil {
			return err
		}

		for _, c := range children {
			if err := visit(c, q.Recursive); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(entry, true); err != nil {
		return nil, err
	}
	return resp, nil
}
