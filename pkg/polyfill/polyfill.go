// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package polyfill

import (
	"embed"
	"fmt"
	"path"
	"slices"

	"hastepack.dev/x/packager/pkg/module"
	"github.com/samber/lo"
)

//go:embed files/*.js
var files embed.FS

const builtinDir = "polyfills"

var (
	// DefaultNames are the built-in polyfills, in load order
	DefaultNames = []string{
		"polyfills.js",
		"console.js",
		"error-guard.js",
		"String.prototype.es6.js",
		"Array.prototype.es6.js",
		"Array.es6.js",
		"Object.es7.js",
		"babelHelpers.js",
	}
)

const (
	preludeName          = "prelude.js"
	preludeDevName       = "prelude_dev.js"
	moduleSystem         = "require.js"
	moduleSystemUnbundle = "require-unbundle.js"
)

// Store persists built-in polyfill sources so the graph engine can read them like any other file
type Store interface {
	Materialize(relPath string, data []byte) (string, error)
}

// Creator builds polyfill modules, implemented by the graph engine
type Creator interface {
	CreatePolyfill(spec module.PolyfillSpec) (*module.Module, error)
}

// Builtin returns the absolute path of the built-in polyfill called name
func Builtin(store Store, name string) (string, error) {
	data, err := files.ReadFile(path.Join("files", name))
	if err != nil {
		return "", fmt.Errorf("unknown built-in polyfill %q: %w", name, err)
	}
	return store.Materialize(path.Join(builtinDir, name), data)
}

// Files returns the built-in polyfills followed by extra, as file paths.
// A file listed more than once keeps its first position.
func Files(store Store, extra []string) ([]string, error) {
	builtins, err := builtins(store, DefaultNames...)
	if err != nil {
		return nil, err
	}
	return lo.Uniq(append(builtins, extra...)), nil
}

// ModuleSystemFiles returns the prelude and module system runtime for a build
func ModuleSystemFiles(store Store, dev, unbundle bool) ([]string, error) {
	return builtins(store,
		lo.Ternary(dev, preludeDevName, preludeName),
		lo.Ternary(unbundle, moduleSystemUnbundle, moduleSystem),
	)
}

func builtins(store Store, names ...string) ([]string, error) {
	paths := make([]string, 0, len(names))
	for _, n := range names {
		p, err := Builtin(store, n)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Order makes every polyfill depend on all the polyfills configured before it
func Order(files []string) []module.PolyfillSpec {
	return lo.Map(files, func(f string, i int) module.PolyfillSpec {
		return module.PolyfillSpec{
			File:         f,
			ID:           f,
			Dependencies: slices.Clone(files[:i]),
		}
	})
}

// Create builds the polyfill modules for specs, in order
func Create(c Creator, specs []module.PolyfillSpec) ([]*module.Module, error) {
	modules := make([]*module.Module, 0, len(specs))
	for _, s := range specs {
		m, err := c.CreatePolyfill(s)
		if err != nil {
			return nil, fmt.Errorf("creating polyfill %q: %w", s.File, err)
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// Prepend puts polyfills ahead of everything in resp, keeping their order.
func Prepend(resp *module.ResolutionResponse, polyfills []*module.Module) error {
	for i := len(polyfills) - 1; i >= 0; i-- {
		if err := resp.Prepend(polyfills[i]); err != nil {
			return err
		}
	}
	return nil
}
