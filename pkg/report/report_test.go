// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"hastepack.dev/x/packager/pkg/module"
	"hastepack.dev/x/packager/pkg/resolver/resolvererrors"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(t *testing.T) *module.ResolutionResponse {
	resp := module.NewResolutionResponse()
	poly := &module.Module{Path: "/cache/polyfills/console.js", Name: "console", IsPolyfill: true}
	entry := &module.Module{Path: "/app/index.js", Name: "app"}
	data := &module.Module{Path: "/app/data.json", Name: "app/data", IsJSON: true}
	for _, m := range []*module.Module{entry, data} {
		require.NoError(t, resp.Add(m))
	}
	require.NoError(t, resp.SetMapping(entry, []module.DependencyPair{
		{Reference: "./data.json", Module: data},
		{Reference: "missing"},
	}))
	require.NoError(t, resp.Prepend(poly))
	_, err := resp.Finalize()
	require.NoError(t, err)
	return resp
}

func TestNew(t *testing.T) {
	r, err := New(response(t), "/app/index.js", "ios")
	require.NoError(t, err)

	require.Len(t, r.Modules, 3)
	assert.Equal(t, &Entry{ID: 0, Name: "console", Kind: KindPolyfill, Path: "/cache/polyfills/console.js"}, r.Modules[0])
	assert.Equal(t, &Entry{
		ID:           1,
		Name:         "app",
		Kind:         KindModule,
		Path:         "/app/index.js",
		Dependencies: []string{"app/data"},
		Unresolved:   []string{"missing"},
	}, r.Modules[1])
	assert.Equal(t, KindJSON, r.Modules[2].Kind)
}

func TestNewRequiresFinalizedResponse(t *testing.T) {
	resp := module.NewResolutionResponse()
	require.NoError(t, resp.Add(&module.Module{Path: "/a.js"}))
	_, err := New(resp, "/a.js", "")
	assert.ErrorIs(t, err, module.ErrNotFinalized)
}

func TestRender(t *testing.T) {
	r, err := New(response(t), "/app/index.js", "ios")
	require.NoError(t, err)

	out, err := r.Render(List)
	require.NoError(t, err)
	assert.Equal(t, "console\napp\napp/data", out)

	out, err = r.Render(YAML)
	require.NoError(t, err)
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, Kind, fromYAML.Kind)
	assert.Equal(t, r.Modules, fromYAML.Modules)

	out, err = r.Render(JSON)
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fromJSON))
	assert.Equal(t, "hastepack.dev/v1", fromJSON["apiVersion"])
	assert.Equal(t, "/app/index.js", fromJSON["entryPoint"])

	out, err = r.Render(Table)
	require.NoError(t, err)
	assert.Contains(t, out, "app/data")
	assert.Contains(t, out, "1 unresolved")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFailed(t *testing.T) {
	sentinel := errors.New("still loading")
	r := Failed(fmt.Errorf("query: %w", sentinel), "/app/index.js", "", resolvererrors.Classifier{
		Sentinel: sentinel,
		Code:     resolvererrors.NotReady,
	})
	require.Len(t, r.Errors, 1)
	assert.Equal(t, resolvererrors.NotReady, r.Errors[0].Code)

	out, err := r.Render(YAML)
	require.NoError(t, err)
	assert.Contains(t, out, "NOT_READY")
}
