// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wrapper

import (
	"context"
	"strings"
	"testing"

	"hastepack.dev/x/packager/pkg/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapModule(t *testing.T) {
	w := New("", nil)
	m := &module.Module{Path: "/app/a.js", Name: "app/a"}

	t.Run("dev", func(t *testing.T) {
		r, err := w.Wrap(context.Background(), Input{Module: m, Name: "app/a", Code: "exports.x = 1;", Dev: true})
		require.NoError(t, err)
		assert.Equal(t,
			`__d(/* app/a */function(global, require, module, exports) {exports.x = 1;`+"\n"+`}, "app/a", null, "app/a");`,
			r.Code)
	})

	t.Run("prod", func(t *testing.T) {
		r, err := w.Wrap(context.Background(), Input{Module: m, Name: "app@libA/foo", Code: "exports.x = 1;"})
		require.NoError(t, err)
		assert.Equal(t,
			`__d(/* app@libA/foo */function(global, require, module, exports) {exports.x = 1;`+"\n"+`}, "app@libA/foo");`,
			r.Code)
	})
}

func TestWrapJSON(t *testing.T) {
	m := &module.Module{Path: "/app/data.json", Name: "app/data.json", IsJSON: true}
	assert.True(t, strings.HasPrefix(JSON(`{"a":1}`), `module.exports = {"a":1}`))

	r, err := New("", nil).Wrap(context.Background(), Input{Module: m, Name: m.Name, Code: `{"a":1}`})
	require.NoError(t, err)
	assert.Contains(t, r.Code, `function(global, require, module, exports) {module.exports = {"a":1}`)
}

func TestWrapPolyfill(t *testing.T) {
	m := &module.Module{Path: "/polyfills/console.js", IsPolyfill: true}
	r, err := New("", nil).Wrap(context.Background(), Input{Module: m, Name: "ignored", Code: "global.x = 1;"})
	require.NoError(t, err)
	assert.Equal(t,
		"(function(global) {global.x = 1;\n})(typeof global !== 'undefined' ? global : typeof self !== 'undefined' ? self : this);",
		r.Code)
	assert.NotContains(t, r.Code, "__d(")
}

func TestCustomDefineFn(t *testing.T) {
	code, err := Define("define", "app/a", "", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "define(/* app/a */"))
}

func TestStringifyDoesNotEscapeHTML(t *testing.T) {
	s, err := stringify(`a<b>&"c"`)
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&\"c\""`, s)
}

func TestWrapMinify(t *testing.T) {
	m := &module.Module{Path: "/app/a.js", Name: "app/a"}

	_, err := New("", nil).Wrap(context.Background(), Input{Module: m, Name: m.Name, Minify: true})
	require.Error(t, err)

	var gotPath string
	minify := func(_ context.Context, path, code, sourceMap string) (*Result, error) {
		gotPath = path
		return &Result{Code: strings.ToUpper(code), Map: sourceMap}, nil
	}
	r, err := New("", minify).Wrap(context.Background(), Input{Module: m, Name: m.Name, Code: "x", Map: "map", Minify: true})
	require.NoError(t, err)
	assert.Equal(t, "/app/a.js", gotPath)
	assert.True(t, strings.HasPrefix(r.Code, "__D(/* APP/A */"))
	assert.Equal(t, "map", r.Map)
}

func TestWrapIsDeterministic(t *testing.T) {
	w := New("", nil)
	m := &module.Module{Path: "/app/a.js", Name: "app/a"}
	in := Input{Module: m, Name: m.Name, Code: "require('x');", Dev: true}

	a, err := w.Wrap(context.Background(), in)
	require.NoError(t, err)
	b, err := w.Wrap(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHasModuleSyntax(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"import foo from 'libA/foo';", true},
		{"import {a, b} from './a';", true},
		{"import * as ns from './a';", true},
		{"import './side-effect';", true},
		{"import foo, {bar} from './a';", true},
		{"  export default 42;", true},
		{"export const a = 1;", true},
		{"export {a} from './a';", true},
		{"export * from './a';", true},
		{"const a = require('./a');", false},
		{"exports.x = 1;", false},
		{"module.exports = importantValue;", false},
		{"import('./lazy').then(load);", false},
		{"var s = 'import foo from \"x\"';", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, HasModuleSyntax(tc.code), tc.code)
	}
}

func TestWrapRejectsModuleSyntax(t *testing.T) {
	w := New("", nil)
	m := &module.Module{Path: "/app/index.js", Name: "app"}
	_, err := w.Wrap(context.Background(), Input{Module: m, Name: "app", Code: "// entry\nimport foo from 'app/foo';\n"})
	assert.ErrorIs(t, err, ErrModuleSyntax)

	polyfill := &module.Module{Path: "/p.js", Name: "p.js", IsPolyfill: true}
	_, err = w.Wrap(context.Background(), Input{Module: polyfill, Name: "p.js", Code: "export default 1;"})
	assert.NoError(t, err)
}
