// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

func (g *FS) watch(ctx context.Context, dirs []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return err
		}
	}

	g.mu.Lock()
	g.watcher = w
	g.mu.Unlock()

	go func() {
		<-ctx.Done()
		g.Close()
	}()
	go g.watchLoop(w)
	return nil
}

func (g *FS) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			g.handleEvent(w, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "err", err)
		}
	}
}

func (g *FS) handleEvent(w *fsnotify.Watcher, ev fsnotify.Event) {
	p := filepath.Clean(ev.Name)
	if g.ignored(p) {
		return
	}
	slog.Debug("file changed", "path", p, "op", ev.Op.String())

	g.transforms.forget(p)
	if filepath.Base(p) == packageJSON {
		g.namer.invalidate(filepath.Dir(p))
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		g.removeFromIndex(p)
		return
	}

	info, err := os.Stat(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to stat changed file", "path", p, "err", err)
		}
		g.removeFromIndex(p)
		return
	}
	if !info.IsDir() {
		g.mu.Lock()
		g.files[p] = info
		g.mu.Unlock()
		return
	}

	// new directory: index and watch everything below it
	err = filepath.WalkDir(p, func(sub string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if g.ignored(sub) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return w.Add(sub)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		g.mu.Lock()
		g.files[sub] = info
		g.mu.Unlock()
		return nil
	})
	if err != nil {
		slog.Warn("failed to index new directory", "path", p, "err", err)
	}
}

func (g *FS) removeFromIndex(p string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	prefix := p + string(filepath.Separator)
	for f := range g.files {
		if f == p || strings.HasPrefix(f, prefix) {
			delete(g.files, f)
		}
	}
}
