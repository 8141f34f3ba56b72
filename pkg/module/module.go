// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package module

import (
	"crypto/sha256"
	"encoding/hex"
)

// Module is a single file known to the dependency graph.
// It is created by the graph engine for one resolution. Its Name is assigned
// before the resolution is finalized and it is not modified afterwards.
type Module struct {
	// Path is the resolved absolute file path
	Path string
	// Name is the canonical name, unique within a resolution
	Name string

	// Code is the transformed source text
	Code string
	// Map is the source map produced by the transform, if any
	Map string

	// Dependencies are the reference strings as written in the source.
	// For polyfills this is only an ordering hint.
	Dependencies []string
	// DependencyOffsets are byte offsets into Code where reference strings occur.
	// nil means the offsets are unknown and references are located by pattern.
	DependencyOffsets []int

	IsPolyfill bool
	IsJSON     bool
	IsAsset    bool
}

// Hash is the key of the module in a ResolutionResponse's mapping table
func (m *Module) Hash() string {
	kind := "module"
	if m.IsPolyfill {
		kind = "polyfill"
	}
	sum := sha256.Sum256([]byte(kind + "\x00" + m.Path))
	return hex.EncodeToString(sum[:16])
}

func (m *Module) String() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Path
}

// DependencyPair associates a reference string with the module it resolved to.
// Module is nil when the reference could not (or intentionally does not) resolve.
type DependencyPair struct {
	Reference string
	Module    *Module
}

func (p DependencyPair) Resolved() bool {
	return p.Module != nil
}

// PolyfillSpec describes a polyfill to be created by the graph engine.
// Dependencies only fix the load order relative to other polyfills.
type PolyfillSpec struct {
	File         string
	ID           string
	Dependencies []string
}
