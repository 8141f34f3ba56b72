// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hastepack.dev/x/packager/pkg/module"
	"github.com/samber/lo"
)

const packageJSON = "package.json"

type packageInfo struct {
	Root string `json:"-"`
	Name string `json:"name"`
	Main string `json:"main"`
}

// mainPath is the absolute path of the package's main file, without extension
func (p *packageInfo) mainPath() string {
	main := p.Main
	if main == "" {
		main = "index"
	}
	return trimExt(filepath.Join(p.Root, filepath.FromSlash(main)))
}

// namer derives canonical module names from the nearest package.json.
// Lookups are cached per directory.
type namer struct {
	g     *FS
	roots []string

	mu       sync.Mutex
	packages map[string]*packageInfo // dir -> owning package, nil for none
}

func newNamer(g *FS, roots []string) *namer {
	return &namer{g: g, roots: roots, packages: make(map[string]*packageInfo)}
}

// name is "<package>/<path in package, without extension>", or the package name alone for its main file.
// Files outside any package are named by their path relative to the project root.
func (n *namer) name(m *module.Module) (string, error) {
	pkg, err := n.owningPackage(filepath.Dir(m.Path))
	if err != nil {
		return "", err
	}

	p := m.Path
	if !m.IsAsset {
		p = n.trimPlatform(trimExt(p))
	}

	if pkg == nil {
		root, ok := lo.Find(n.roots, func(r string) bool {
			return strings.HasPrefix(p, r+string(filepath.Separator))
		})
		if !ok {
			return "", fmt.Errorf("cannot name %q: it belongs to no package and no project root", m.Path)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(rel), nil
	}

	if !m.IsAsset && p == pkg.mainPath() {
		return pkg.Name, nil
	}
	rel, err := filepath.Rel(pkg.Root, p)
	if err != nil {
		return "", err
	}
	return pkg.Name + "/" + filepath.ToSlash(rel), nil
}

// owningPackage finds the package.json at or above dir
func (n *namer) owningPackage(dir string) (*packageInfo, error) {
	n.mu.Lock()
	pkg, ok := n.packages[dir]
	n.mu.Unlock()
	if ok {
		return pkg, nil
	}

	pkg, err := n.readPackage(dir)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		if parent := filepath.Dir(dir); parent != dir {
			if pkg, err = n.owningPackage(parent); err != nil {
				return nil, err
			}
		}
	}

	n.mu.Lock()
	n.packages[dir] = pkg
	n.mu.Unlock()
	return pkg, nil
}

// readPackage reads dir/package.json, returning nil if there is none
func (n *namer) readPackage(dir string) (*packageInfo, error) {
	p := filepath.Join(dir, packageJSON)
	if !n.g.isFile(p) {
		return nil, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var pkg packageInfo
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", p, err)
	}
	if pkg.Name == "" {
		return nil, fmt.Errorf("%s has no name", p)
	}
	pkg.Root = dir
	return &pkg, nil
}

// packageMain returns the main file of the package in dir, if dir holds a package.json with a main entry
func (n *namer) packageMain(dir string) (string, bool) {
	pkg, err := n.readPackage(dir)
	if err != nil || pkg == nil || pkg.Main == "" {
		return "", false
	}
	return filepath.Join(dir, filepath.FromSlash(pkg.Main)), true
}

// invalidate drops cached lookups at and below dir
func (n *namer) invalidate(dir string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for d := range n.packages {
		if d == dir || strings.HasPrefix(d, dir+string(filepath.Separator)) {
			delete(n.packages, d)
		}
	}
}

func (n *namer) trimPlatform(p string) string {
	for _, platform := range n.g.opts.Platforms {
		if s, ok := strings.CutSuffix(p, "."+platform); ok {
			return s
		}
	}
	return p
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
