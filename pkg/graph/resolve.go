// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"path/filepath"
	"strings"
)

const nodeModulesDir = "node_modules"

// resolve maps the reference ref, written in the module at from, to a file path
func (g *FS) resolve(from, ref, platform string) (string, error) {
	notFound := &UnresolvedError{From: from, Reference: ref}

	if isRelative(ref) || filepath.IsAbs(ref) {
		p := ref
		if !filepath.IsAbs(ref) {
			p = filepath.Join(filepath.Dir(from), filepath.FromSlash(ref))
		}
		if r, ok := g.resolveFileOrDir(p, platform); ok {
			return r, nil
		}
		return "", notFound
	}

	pkg, rest := splitPackage(ref)
	if dir, ok := g.opts.ExtraNodeModules[pkg]; ok {
		if r, ok := g.resolveFileOrDir(filepath.Join(dir, filepath.FromSlash(rest)), platform); ok {
			return r, nil
		}
	}

	for dir := filepath.Dir(from); ; dir = filepath.Dir(dir) {
		if filepath.Base(dir) != nodeModulesDir {
			candidate := filepath.Join(dir, nodeModulesDir, filepath.FromSlash(ref))
			if r, ok := g.resolveFileOrDir(candidate, platform); ok {
				return r, nil
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return "", notFound
}

func (g *FS) resolveFileOrDir(p, platform string) (string, bool) {
	if r, ok := g.resolveFile(p, platform); ok {
		return r, true
	}
	if !g.isDir(p) {
		return "", false
	}
	if main, ok := g.namer.packageMain(p); ok {
		if r, ok := g.resolveFile(main, platform); ok {
			return r, true
		}
		if r, ok := g.resolveIndex(main, platform); ok {
			return r, true
		}
	}
	return g.resolveIndex(p, platform)
}

// resolveFile tries p as written, then with a platform suffix, then with the default extensions.
// A platform specific file wins over the generic one.
func (g *FS) resolveFile(p, platform string) (string, bool) {
	ext := filepath.Ext(p)
	if ext == ".js" || ext == ".json" || g.isAsset(p) {
		if platform != "" {
			base := strings.TrimSuffix(p, ext)
			if candidate := base + "." + platform + ext; g.isFile(candidate) {
				return candidate, true
			}
		}
		if g.isFile(p) {
			return p, true
		}
	}

	var candidates []string
	if platform != "" {
		candidates = append(candidates, p+"."+platform+".js")
	}
	candidates = append(candidates, p+".js", p+".json")
	for _, c := range candidates {
		if g.isFile(c) {
			return c, true
		}
	}
	return "", false
}

func (g *FS) resolveIndex(dir, platform string) (string, bool) {
	return g.resolveFile(filepath.Join(dir, "index"), platform)
}

func isRelative(ref string) bool {
	return ref == "." || ref == ".." || strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../")
}

// splitPackage splits a bare reference into its package name and the path inside the package.
// Scoped packages keep their scope.
func splitPackage(ref string) (pkg, rest string) {
	parts := strings.SplitN(ref, "/", 3)
	if strings.HasPrefix(ref, "@") && len(parts) >= 2 {
		pkg = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			rest = parts[2]
		}
		return pkg, rest
	}
	pkg, rest, _ = strings.Cut(ref, "/")
	return pkg, rest
}
