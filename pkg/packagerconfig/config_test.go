// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packagerconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.Dir(name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	project, home := t.TempDir(), t.TempDir()
	writeFile(t, project, PackageJSONName, `{"name": "app"}`)

	c, err := GetWithCustomHome(project, home)
	require.NoError(t, err)
	assert.Equal(t, []string{project}, c.Roots)
	assert.Equal(t, DefaultAssetExts, c.AssetExts)
	assert.Equal(t, filepath.Join(home, "cache"), c.CachePath)

	name, err := c.ResolveAppName()
	require.NoError(t, err)
	assert.Equal(t, "app", name)

	m, err := c.ReadManifest()
	require.NoError(t, err)
	assert.Nil(t, m)

	core, err := c.ReadCoreModules()
	require.NoError(t, err)
	assert.Zero(t, core.Len())

	re, err := c.BlacklistRegexp()
	require.NoError(t, err)
	assert.Nil(t, re)
}

func TestConfigFileAndEnvOverrides(t *testing.T) {
	project, home := t.TempDir(), t.TempDir()
	writeFile(t, project, ConfigFileName, `
roots: [src]
blacklist: 'vendor/.*\.js$'
polyfills: [polyfills/a.js]
extra-node-modules:
  lib: ../vendored/lib
external-modules: [react]
app-name: configured
platform: ios
`)
	t.Setenv(PlatformEnvVar, "android")
	t.Setenv(ResetCacheEnvVar, "true")
	t.Setenv(PolyfillsEnvVar, "polyfills/b.js, ,polyfills/c.js")
	t.Setenv(ManifestEnvVar, "manifest.yaml")

	c, err := GetWithCustomHome(project, home)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(project, "src")}, c.Roots)
	assert.Equal(t, "android", c.Platform)
	assert.True(t, c.ResetCache)
	assert.Equal(t, []string{
		filepath.Join(project, "polyfills", "a.js"),
		filepath.Join(project, "polyfills", "b.js"),
		filepath.Join(project, "polyfills", "c.js"),
	}, c.Polyfills)
	assert.Equal(t, filepath.Join(filepath.Dir(project), "vendored", "lib"), c.ExtraNodeModules["lib"])
	assert.Equal(t, map[string]bool{"react": true}, c.ExternalModulesAllowList())
	assert.Equal(t, filepath.Join(project, "manifest.yaml"), c.Manifest)

	name, err := c.ResolveAppName()
	require.NoError(t, err)
	assert.Equal(t, "configured", name)

	re, err := c.BlacklistRegexp()
	require.NoError(t, err)
	assert.True(t, re.MatchString("/x/vendor/y.js"))
}

func TestInvalidConfig(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, ConfigFileName, "unknown-field: 1\n")
	_, err := GetWithCustomHome(project, t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	writeFile(t, project, ConfigFileName, "blacklist: '('\n")
	c, err := GetWithCustomHome(project, t.TempDir())
	require.NoError(t, err)
	_, err = c.BlacklistRegexp()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInvalidResetCacheEnvVar(t *testing.T) {
	t.Setenv(ResetCacheEnvVar, "maybe")
	_, err := GetWithCustomHome(t.TempDir(), t.TempDir())
	assert.Error(t, err)
}

func TestHomeFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)
	c, err := Get(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, home, c.HomePath)
}
