// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hastepack.dev/x/packager/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	p, err := c.Materialize("polyfills/a.js", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Dir(), "polyfills", "a.js"), p)

	info, err := os.Stat(p)
	require.NoError(t, err)

	// identical content leaves the file untouched
	_, err = c.Materialize("polyfills/a.js", []byte("a"))
	require.NoError(t, err)
	again, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())

	_, err = c.Materialize("polyfills/a.js", []byte("b"))
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestPutGetReset(t *testing.T) {
	ctx := testutil.Context(t)
	c, err := New(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(src, []byte("require('b');"), 0o644))
	info, err := os.Stat(src)
	require.NoError(t, err)
	key := Key(src, info, "v1")

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	entry := &Entry{
		Path:              src,
		Code:              "require('b');",
		Dependencies:      []string{"b"},
		DependencyOffsets: []int{8},
	}
	require.NoError(t, c.Put(ctx, key, entry))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	require.NoError(t, c.Reset(ctx))
	_, ok, err = c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutGetKeepsCodeByteExact(t *testing.T) {
	ctx := testutil.Context(t)
	c, err := New(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name      string
		code      string
		sourceMap string
	}{
		{name: "crlf", code: "// header\r\nvar b = require('./b');\r\n"},
		{name: "trailing whitespace", code: "var a = require('./a');\nvar b = 2;  \n  "},
		{name: "invalid utf-8", code: "var s = '\xff';\nrequire('./c');"},
		{name: "with map", code: "require('./d');\n\n\n", sourceMap: "{\"version\":3}\r\n"},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := Key(tc.name, fakeInfo{}, "v1") + string(rune('a'+i))
			deps, offsets := []string{"./x"}, []int{len(tc.code) - 1}
			entry := &Entry{Path: "/p/" + tc.name, Code: tc.code, Map: tc.sourceMap, Dependencies: deps, DependencyOffsets: offsets}
			require.NoError(t, c.Put(ctx, key, entry))

			got, ok, err := c.Get(key)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, entry, got)
		})
	}
}

func TestGetRejectsCodeNotMatchingMetadata(t *testing.T) {
	ctx := testutil.Context(t)
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := "0123456789"
	require.NoError(t, c.Put(ctx, key, &Entry{Path: "/a.js", Code: "require('./b');", Dependencies: []string{"./b"}, DependencyOffsets: []int{8}}))
	require.NoError(t, os.WriteFile(c.codePath(key), []byte("require('./b');\n"), 0o644))

	_, _, err = c.Get(key)
	assert.ErrorIs(t, err, ErrCorruptEntry)

	require.NoError(t, os.Remove(c.codePath(key)))
	_, _, err = c.Get(key)
	assert.ErrorIs(t, err, ErrCorruptEntry)
}

// fakeInfo is a file that never changes
type fakeInfo struct{ os.FileInfo }

func (fakeInfo) ModTime() time.Time { return time.Unix(0, 0) }
func (fakeInfo) Size() int64        { return 0 }

func TestKeyChangesWithInputs(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	info, err := os.Stat(src)
	require.NoError(t, err)

	k := Key(src, info, "v1")
	assert.Equal(t, k, Key(src, info, "v1"))
	assert.NotEqual(t, k, Key(src, info, "v2"))

	later := info.ModTime().Add(time.Second)
	require.NoError(t, os.Chtimes(src, later, later))
	info, err = os.Stat(src)
	require.NoError(t, err)
	assert.NotEqual(t, k, Key(src, info, "v1"))
}

func TestGetCorruptEntry(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	key := "abcdef"
	p := c.entryPath(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("code: [unterminated"), 0o644))

	_, _, err = c.Get(key)
	assert.ErrorIs(t, err, ErrCorruptEntry)
}
