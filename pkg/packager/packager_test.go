// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packager

import (
	"fmt"
	"testing"

	"hastepack.dev/x/packager/pkg/packagerconfig"
	"hastepack.dev/x/packager/pkg/packagerversion"
	"hastepack.dev/x/packager/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const manifestFmt = `apiVersion: hastepack.dev/v1
kind: Manifest
spec:
  name: rn-core
  version: 0.40.0
  packager: "%s"
  external-modules:
    - react
`

type PackagerSuite struct {
	testutil.CommonSetupSuite
}

func TestPackagerSuite(t *testing.T) {
	suite.Run(t, &PackagerSuite{})
}

func (suite *PackagerSuite) project(constraint string) *packagerconfig.Config {
	dir := testutil.WriteProject(suite.T(), map[string]string{
		"package.json":      `{"name": "app"}`,
		"index.js":          "",
		"hpk.yaml":          "manifest: manifest.yaml\nexternal-modules: [lodash]\n",
		"manifest.yaml":     fmt.Sprintf(manifestFmt, constraint),
		"core-modules.yaml": "apiVersion: hastepack.dev/v1\nkind: CoreModulesList\nmodules: [shim]\n",
	})
	config, err := packagerconfig.Get(dir)
	suite.Require().NoError(err)
	return config
}

func (suite *PackagerSuite) TestResolverOptions() {
	t := suite.T()
	config := suite.project(">= 0.1.0")

	opts, err := ResolverOptions(config)
	require.NoError(t, err)
	assert.Equal(t, "app", opts.AppName)
	assert.Equal(t, []string{config.ProjectDir}, opts.ProjectRoots)
	assert.Equal(t, map[string]bool{"lodash": true}, opts.ExternalModules)
	require.NotNil(t, opts.Manifest)
	assert.Equal(t, "rn-core", opts.Manifest.Spec.Name)
	assert.True(t, opts.CoreModules.Contains("shim"))
	assert.NotNil(t, opts.Cache)
}

func (suite *PackagerSuite) TestIncompatibleManifest() {
	t := suite.T()
	released := packagerversion.PackagerVersion
	packagerversion.PackagerVersion = "1.0.0"
	t.Cleanup(func() { packagerversion.PackagerVersion = released })

	_, err := ResolverOptions(suite.project(">= 2.0.0"))
	assert.ErrorIs(t, err, ErrIncompatibleManifest)

	_, err = ResolverOptions(suite.project("^1.0.0"))
	assert.NoError(t, err)
}

func (suite *PackagerSuite) TestNewResolver() {
	t := suite.T()
	ctx := testutil.Context(t)

	r, err := NewResolver(ctx, suite.project(">= 0.1.0"))
	require.NoError(t, err)
	defer r.Close()
	assert.NoError(t, r.Ready(ctx))
}
