// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/fslock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEnvVar(t *testing.T) {
	_, ok := ListEnvVar("HPK_TEST_UNSET_LIST")
	assert.False(t, ok)

	t.Setenv("HPK_TEST_LIST", " a.js, ,b.js,")
	vals, ok := ListEnvVar("HPK_TEST_LIST")
	assert.True(t, ok)
	assert.Equal(t, []string{"a.js", "b.js"}, vals)
}

func TestBoolEnvVar(t *testing.T) {
	t.Setenv("HPK_TEST_BOOL", "nope")
	_, ok, err := BoolEnvVar("HPK_TEST_BOOL")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "out.txt")
	require.NoError(t, WriteFileAtomic(dst, []byte("one")))
	require.NoError(t, WriteFileAtomic(dst, []byte("two")))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWithLockWaitsForHolder(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "cache.lock")
	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))

	holder := fslock.New(lockPath)
	require.NoError(t, holder.TryLock())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	ran := false
	err := WithLock(ctx, lockPath, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)

	require.NoError(t, holder.Unlock())
	require.NoError(t, WithLock(context.Background(), lockPath, func() error { ran = true; return nil }))
	assert.True(t, ran)
}
