// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualify(t *testing.T) {
	tests := []struct {
		name     string
		q        *Qualifier
		input    string
		expected string
	}{
		{
			name:     "foreign package",
			q:        New("app", true, map[string]bool{}),
			input:    "libA/foo",
			expected: "app@libA/foo",
		},
		{
			name:     "own package",
			q:        New("app", true, map[string]bool{}),
			input:    "app/bar",
			expected: "app/bar",
		},
		{
			name:     "single segment is its own package",
			q:        New("app", true, nil),
			input:    "shim",
			expected: "app@shim",
		},
		{
			name:     "single segment matching the app",
			q:        New("app", true, nil),
			input:    "app",
			expected: "app",
		},
		{
			name:     "allow-listed",
			q:        New("app", true, map[string]bool{"libA/foo": true}),
			input:    "libA/foo",
			expected: "libA/foo",
		},
		{
			name:     "allow-listed without manifest",
			q:        New("app", false, map[string]bool{"libA/foo": true}),
			input:    "libA/foo",
			expected: "libA/foo",
		},
		{
			name:     "no manifest",
			q:        New("app", false, nil),
			input:    "libA/foo",
			expected: "libA/foo",
		},
		{
			name:     "falsy allow-list entry",
			q:        New("app", true, map[string]bool{"libA/foo": false}),
			input:    "libA/foo",
			expected: "app@libA/foo",
		},
		{
			name:     "disabled",
			q:        Disabled(),
			input:    "libA/foo",
			expected: "libA/foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.q.Qualify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQualifyWithoutAppName(t *testing.T) {
	_, err := New("", true, nil).Qualify("libA/foo")
	assert.ErrorIs(t, err, ErrUnqualifiable)

	// allow-listed names never need the app name
	got, err := New("", true, map[string]bool{"libA/foo": true}).Qualify("libA/foo")
	require.NoError(t, err)
	assert.Equal(t, "libA/foo", got)
}

func TestOwningPackage(t *testing.T) {
	assert.Equal(t, "libA", OwningPackage("libA/foo/bar"))
	assert.Equal(t, "shim", OwningPackage("shim"))
	assert.Equal(t, "", OwningPackage(""))
}
