// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cache is the on-disk cache directory shared by hpk processes.
// It holds materialized built-in polyfills and transform results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"hastepack.dev/x/packager/pkg/utils"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

const (
	lockFile      = ".lock"
	transformsDir = "transforms"
)

var ErrCorruptEntry = errors.New("corrupt cache entry")

type Cache struct {
	dir string
}

func New(dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory must be set")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := utils.EnsureDirs(abs); err != nil {
		return nil, err
	}
	return &Cache{dir: abs}, nil
}

func (c *Cache) Dir() string {
	return c.dir
}

// Materialize writes data under relPath unless an identical file is already there,
// and returns the absolute path of the file
func (c *Cache) Materialize(relPath string, data []byte) (string, error) {
	p := filepath.Join(c.dir, filepath.FromSlash(relPath))
	existing, err := os.ReadFile(p)
	if err == nil && string(existing) == string(data) {
		return p, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if err := utils.WriteFileAtomic(p, data); err != nil {
		return "", fmt.Errorf("materializing %q: %w", relPath, err)
	}
	return p, nil
}

// Entry is a cached transform result. Code and Map are stored byte for byte
// in files of their own, DependencyOffsets index into Code.
type Entry struct {
	Path              string
	Code              string
	Map               string
	Dependencies      []string
	DependencyOffsets []int
}

// entryMeta is the YAML part of an entry
type entryMeta struct {
	Path              string   `yaml:"path"`
	CodeSum           string   `yaml:"code-sha256"`
	HasMap            bool     `yaml:"has-map,omitempty"`
	Dependencies      []string `yaml:"dependencies,omitempty"`
	DependencyOffsets []int    `yaml:"dependency-offsets,omitempty"`
}

// Key identifies the transform of a file at a given state. A change to the
// file's mtime or size, or to the transform cache key, yields a new key.
func Key(path string, info os.FileInfo, transformCacheKey string) string {
	h := sha256.New()
	for _, part := range []string{
		path,
		strconv.FormatInt(info.ModTime().UnixNano(), 10),
		strconv.FormatInt(info.Size(), 10),
		transformCacheKey,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sum(data string) string {
	s := sha256.Sum256([]byte(data))
	return hex.EncodeToString(s[:])
}

// entryPath is the metadata file of key, the code and map files sit next to it
func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, transformsDir, key[:2], key+".yaml")
}

func (c *Cache) codePath(key string) string {
	return filepath.Join(c.dir, transformsDir, key[:2], key+".js")
}

func (c *Cache) mapPath(key string) string {
	return filepath.Join(c.dir, transformsDir, key[:2], key+".map")
}

// Get returns the entry stored under key. A missing entry is not an error.
// An entry whose code doesn't match its metadata is reported as ErrCorruptEntry.
func (c *Cache) Get(key string) (*Entry, bool, error) {
	data, err := os.ReadFile(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	var meta entryMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, false, fmt.Errorf("%w %s: %w", ErrCorruptEntry, key, err)
	}

	code, err := os.ReadFile(c.codePath(key))
	if err != nil {
		return nil, false, fmt.Errorf("%w %s: %w", ErrCorruptEntry, key, err)
	}
	if sum(string(code)) != meta.CodeSum {
		return nil, false, fmt.Errorf("%w %s: code does not match its checksum", ErrCorruptEntry, key)
	}
	if bad, ok := lo.Find(meta.DependencyOffsets, func(o int) bool { return o < 0 || o >= len(code) }); ok {
		return nil, false, fmt.Errorf("%w %s: dependency offset %d is outside of the code", ErrCorruptEntry, key, bad)
	}

	var sourceMap []byte
	if meta.HasMap {
		if sourceMap, err = os.ReadFile(c.mapPath(key)); err != nil {
			return nil, false, fmt.Errorf("%w %s: %w", ErrCorruptEntry, key, err)
		}
	}

	return &Entry{
		Path:              meta.Path,
		Code:              string(code),
		Map:               string(sourceMap),
		Dependencies:      meta.Dependencies,
		DependencyOffsets: meta.DependencyOffsets,
	}, true, nil
}

// Put stores e under key. The metadata is written last, so a reader never
// finds metadata without the code it describes.
func (c *Cache) Put(ctx context.Context, key string, e *Entry) error {
	meta, err := yaml.Marshal(entryMeta{
		Path:              e.Path,
		CodeSum:           sum(e.Code),
		HasMap:            e.Map != "",
		Dependencies:      e.Dependencies,
		DependencyOffsets: e.DependencyOffsets,
	})
	if err != nil {
		return err
	}
	return utils.WithLock(ctx, c.lockPath(), func() error {
		if err := utils.WriteFileAtomic(c.codePath(key), []byte(e.Code)); err != nil {
			return err
		}
		if e.Map != "" {
			if err := utils.WriteFileAtomic(c.mapPath(key), []byte(e.Map)); err != nil {
				return err
			}
		}
		return utils.WriteFileAtomic(c.entryPath(key), meta)
	})
}

// Reset removes every cached transform result. Materialized files are kept,
// they are rewritten on demand anyway.
func (c *Cache) Reset(ctx context.Context) error {
	return utils.WithLock(ctx, c.lockPath(), func() error {
		slog.Info("resetting cache", "dir", c.dir)
		return os.RemoveAll(filepath.Join(c.dir, transformsDir))
	})
}

func (c *Cache) lockPath() string {
	return filepath.Join(c.dir, lockFile)
}
