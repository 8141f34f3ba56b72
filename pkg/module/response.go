// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package module

import (
	"errors"
	"fmt"
	"slices"

	"hastepack.dev/x/packager/pkg/utils/stringset"
	"github.com/samber/lo"
)

var (
	ErrFinalized     = errors.New("resolution response is already finalized")
	ErrNotFinalized  = errors.New("resolution response is not finalized")
	ErrDuplicateName = errors.New("duplicate canonical module name")
)

// ResolutionResponse is the ordered result of resolving one entry point.
// It is mutable until Finalize is called and must not be shared between
// concurrent resolutions.
type ResolutionResponse struct {
	modules []*Module
	hashes  stringset.StringSet
	// module hash -> dependency pairs of that module
	mappings map[string][]DependencyPair

	numPrepended int
	finalized    bool
	ids          map[*Module]int
}

func NewResolutionResponse() *ResolutionResponse {
	return &ResolutionResponse{
		hashes:   stringset.New(),
		mappings: make(map[string][]DependencyPair),
	}
}

// Add appends m unless a module with the same hash is already present
func (r *ResolutionResponse) Add(m *Module) error {
	if r.finalized {
		return ErrFinalized
	}
	if r.contains(m) {
		return nil
	}
	r.hashes.Add(m.Hash())
	r.modules = append(r.modules, m)
	return nil
}

// Prepend places m before every module currently in the response
func (r *ResolutionResponse) Prepend(m *Module) error {
	if r.finalized {
		return ErrFinalized
	}
	if r.contains(m) {
		return nil
	}
	r.hashes.Add(m.Hash())
	r.modules = slices.Insert(r.modules, 0, m)
	r.numPrepended++
	return nil
}

// SetMapping records the dependency pairs of m
func (r *ResolutionResponse) SetMapping(m *Module, pairs []DependencyPair) error {
	if r.finalized {
		return ErrFinalized
	}
	r.mappings[m.Hash()] = pairs
	return nil
}

// Retain keeps only the modules for which keep returns true, preserving their
// relative order. Mapping entries of dropped modules are deleted as well,
// and dropped prepended modules no longer count as prepended.
// It returns the dropped modules.
func (r *ResolutionResponse) Retain(keep func(i int, m *Module) bool) ([]*Module, error) {
	if r.finalized {
		return nil, ErrFinalized
	}

	var kept, dropped []*Module
	numPrepended := r.numPrepended
	for i, m := range r.modules {
		if keep(i, m) {
			kept = append(kept, m)
			continue
		}
		h := m.Hash()
		delete(r.mappings, h)
		delete(r.hashes, h)
		dropped = append(dropped, m)
		if i < r.numPrepended {
			numPrepended--
		}
	}
	r.modules = kept
	r.numPrepended = numPrepended
	return dropped, nil
}

// Finalize freezes the module order and assigns each module its index.
func (r *ResolutionResponse) Finalize() (*ResolutionResponse, error) {
	if r.finalized {
		return r, nil
	}

	dupes := lo.FindDuplicates(lo.FilterMap(r.modules, func(m *Module, _ int) (string, bool) {
		return m.Name, m.Name != ""
	}))
	if len(dupes) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateName, dupes)
	}

	r.ids = make(map[*Module]int, len(r.modules))
	for i, m := range r.modules {
		r.ids[m] = i
	}
	r.finalized = true
	return r, nil
}

func (r *ResolutionResponse) Finalized() bool {
	return r.finalized
}

// ModuleID is the position of m in the finalized order
func (r *ResolutionResponse) ModuleID(m *Module) (int, error) {
	if !r.finalized {
		return 0, ErrNotFinalized
	}
	id, ok := r.ids[m]
	if !ok {
		return 0, fmt.Errorf("module %q is not part of this resolution", m.Path)
	}
	return id, nil
}

// Modules returns a copy of the current module order
func (r *ResolutionResponse) Modules() []*Module {
	return slices.Clone(r.modules)
}

func (r *ResolutionResponse) Len() int {
	return len(r.modules)
}

func (r *ResolutionResponse) NumPrepended() int {
	return r.numPrepended
}

// ResolvedDependencyPairs returns the dependency pairs recorded for m, or nil
func (r *ResolutionResponse) ResolvedDependencyPairs(m *Module) []DependencyPair {
	return slices.Clone(r.mappings[m.Hash()])
}

// HasMapping reports whether a mapping entry exists for the given module hash
func (r *ResolutionResponse) HasMapping(hash string) bool {
	_, ok := r.mappings[hash]
	return ok
}

func (r *ResolutionResponse) contains(m *Module) bool {
	return r.hashes.Contains(m.Hash())
}
