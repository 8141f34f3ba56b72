// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package coremodules

import (
	"os"
	"path/filepath"
	"testing"

	"hastepack.dev/x/packager/pkg/coremodules/testdata"
	"hastepack.dev/x/packager/pkg/module"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadContents(t *testing.T) {
	l, err := ReadContents(testdata.Valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"react", "react-native", "shim"}, l.Names())
	assert.True(t, l.Contains("shim"))
	assert.False(t, l.Contains("app"))

	for _, y := range [][]byte{testdata.WrongKind, testdata.UnknownField, []byte("")} {
		_, err = ReadContents(y)
		assert.ErrorIs(t, err, ErrInvalidCoreModulesList)
	}
}

func TestFilter(t *testing.T) {
	resp := module.NewResolutionResponse()
	app := &module.Module{Path: "/app/index.js", Name: "app"}
	shim := &module.Module{Path: "/app/node_modules/shim/index.js", Name: "shim"}
	lib := &module.Module{Path: "/app/node_modules/lib/index.js", Name: "lib"}
	for _, m := range []*module.Module{app, shim, lib} {
		require.NoError(t, resp.Add(m))
		require.NoError(t, resp.SetMapping(m, nil))
	}

	removed, err := Filter(resp, NewList("shim"))
	require.NoError(t, err)
	assert.Equal(t, []*module.Module{shim}, removed)

	_, err = resp.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "lib"}, lo.Map(resp.Modules(), func(m *module.Module, _ int) string { return m.Name }))
	assert.False(t, resp.HasMapping(shim.Hash()))
	assert.True(t, resp.HasMapping(lib.Hash()))
}

func TestFilterWithEmptyList(t *testing.T) {
	resp := module.NewResolutionResponse()
	require.NoError(t, resp.Add(&module.Module{Path: "/a.js", Name: "a"}))

	removed, err := Filter(resp, nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 1, resp.Len())
}

func TestDiscover(t *testing.T) {
	t.Run("nothing found", func(t *testing.T) {
		l, err := Discover(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 0, l.Len())
	})

	t.Run("fallback package", func(t *testing.T) {
		dir := t.TempDir()
		p := filepath.Join(dir, "node_modules", FallbackPackage, FileName)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, testdata.Valid, 0o644))

		l, err := Discover(dir)
		require.NoError(t, err)
		assert.True(t, l.Contains("react-native"))
	})

	t.Run("project list wins", func(t *testing.T) {
		dir := t.TempDir()
		fallback := filepath.Join(dir, "node_modules", FallbackPackage, FileName)
		require.NoError(t, os.MkdirAll(filepath.Dir(fallback), 0o755))
		require.NoError(t, os.WriteFile(fallback, testdata.Valid, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`apiVersion: hastepack.dev/v1
kind: CoreModulesList
modules: [only-this]
`), 0o644))

		l, err := Discover(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"only-this"}, l.Names())
	})
}
