// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"hastepack.dev/x/packager/pkg/cache"
)

// transformCache runs transforms once per file state, keeping results in
// memory and in the on-disk cache
type transformCache struct {
	disk      *cache.Cache
	transform TransformFunc
	key       string

	mu     sync.Mutex
	memory map[string]*cache.Entry
}

func newTransformCache(disk *cache.Cache, transform TransformFunc, key string) *transformCache {
	return &transformCache{
		disk:      disk,
		transform: transform,
		key:       key,
		memory:    make(map[string]*cache.Entry),
	}
}

func (t *transformCache) get(ctx context.Context, g *FS, path string, opts TransformOptions) (*cache.Entry, error) {
	info, err := g.Stat(path)
	if err != nil {
		return nil, err
	}
	key := cache.Key(path, info, t.optionsKey(opts))

	t.mu.Lock()
	e, ok := t.memory[key]
	t.mu.Unlock()
	if ok {
		return e, nil
	}

	e, ok, err = t.disk.Get(key)
	if err != nil {
		slog.Warn("ignoring unreadable cache entry", "path", path, "err", err)
	}
	if !ok {
		if e, err = t.run(ctx, path, opts); err != nil {
			return nil, err
		}
		if err := t.disk.Put(ctx, key, e); err != nil {
			return nil, fmt.Errorf("caching transform of %q: %w", path, err)
		}
	}

	t.mu.Lock()
	t.memory[key] = e
	t.mu.Unlock()
	return e, nil
}

func (t *transformCache) run(ctx context.Context, path string, opts TransformOptions) (*cache.Entry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := t.transform(ctx, path, string(src), opts)
	if err != nil {
		return nil, fmt.Errorf("transforming %q: %w", path, err)
	}
	deps, offsets := extractDependencies(res.Code)
	return &cache.Entry{
		Path:              path,
		Code:              res.Code,
		Map:               res.Map,
		Dependencies:      deps,
		DependencyOffsets: offsets,
	}, nil
}

func (t *transformCache) optionsKey(opts TransformOptions) string {
	return t.key + "\x00" + strconv.FormatBool(opts.Dev) + "\x00" + opts.Platform + "\x00" + strconv.FormatBool(opts.Minify)
}

// forget drops the in-memory results for path. Disk entries are keyed by
// mtime and size and go stale on their own.
func (t *transformCache) forget(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, e := range t.memory {
		if e.Path == path {
			delete(t.memory, k)
		}
	}
}
