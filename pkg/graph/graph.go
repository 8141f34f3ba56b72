// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package graph provides the dependency graph the resolver works on.
// Engine is what the resolver consumes; FS is the filesystem implementation.
package graph

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hastepack.dev/x/packager/pkg/module"
)

var (
	ErrNotLoaded  = errors.New("dependency graph is not loaded")
	ErrUnresolved = errors.New("unable to resolve module")
	ErrNotFound   = errors.New("file not found in the dependency graph")
)

type TransformOptions struct {
	Dev      bool
	Platform string
	Minify   bool
}

// Query asks for the modules reachable from EntryPath
type Query struct {
	EntryPath string
	Platform  string
	// Recursive=false stops after the entry's direct dependencies
	Recursive        bool
	TransformOptions TransformOptions
}

type Engine interface {
	// Load crawls the project roots. It must complete before any query.
	Load(ctx context.Context) error
	// GetDependencies returns the entry followed by its dependencies, with
	// the dependency pairs of every module recorded in the response. Module
	// names are left empty, see ModuleName.
	GetDependencies(ctx context.Context, q Query) (*module.ResolutionResponse, error)
	ShallowDependencies(ctx context.Context, path string, opts TransformOptions) ([]string, error)
	ModuleForPath(ctx context.Context, path string) (*module.Module, error)
	ModuleName(ctx context.Context, m *module.Module) (string, error)
	CreatePolyfill(spec module.PolyfillSpec) (*module.Module, error)
	Stat(path string) (os.FileInfo, error)
	// Source returns the transformed code and source map of m
	Source(ctx context.Context, m *module.Module) (code, sourceMap string, err error)
}

// TransformResult is the output of a TransformFunc
type TransformResult struct {
	Code string
	Map  string
}

// TransformFunc transforms the source of the file at path. The dependencies of
// the module are extracted from the transformed code.
type TransformFunc func(ctx context.Context, path, code string, opts TransformOptions) (*TransformResult, error)

// IdentityTransform leaves code untouched
func IdentityTransform(_ context.Context, _, code string, _ TransformOptions) (*TransformResult, error) {
	return &TransformResult{Code: code}, nil
}

// ShouldThrowOnUnresolved reports whether an unresolvable reference in the
// module at path fails the resolution. Android builds tolerate them.
func ShouldThrowOnUnresolved(_ string, platform string) bool {
	return platform != "android"
}

// UnresolvedError is returned for a reference that could not be resolved
type UnresolvedError struct {
	From      string
	Reference string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s %q from %q", ErrUnresolved.Error(), e.Reference, e.From)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}
