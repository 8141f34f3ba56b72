// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package coremodules excludes modules that a shared runtime already provides
// from an application's resolution.
package coremodules

import (
	"errors"
	"fmt"
	"os"

	"hastepack.dev/x/packager/pkg/module"
	"hastepack.dev/x/packager/pkg/schema"
	"hastepack.dev/x/packager/pkg/utils/stringset"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidCoreModulesList = errors.New("invalid core modules list")

const Kind = "CoreModulesList"

type File struct {
	schema.ManifestMeta `yaml:",inline"`
	Modules             []string `yaml:"modules"`
}

// List is an ordered set of canonical module names
type List struct {
	names []string
	set   stringset.StringSet
}

func NewList(names ...string) *List {
	uniq := lo.Uniq(names)
	return &List{names: uniq, set: stringset.New(uniq...)}
}

func (l *List) Contains(name string) bool {
	return l != nil && l.set.Contains(name)
}

func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	return l.names
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

func Read(filePath string) (*List, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	l, err := ReadContents(bytes)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", filePath, err)
	}
	return l, nil
}

func ReadContents(contents []byte) (*List, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(contents, &f, yaml.Strict()); err != nil {
		return nil, errors.Join(ErrInvalidCoreModulesList, err)
	}

	if err := schema.Validate(Kind, f.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoreModulesList, err.Error())
	}

	if lo.Contains(f.Modules, "") {
		return nil, fmt.Errorf("%w: empty module name", ErrInvalidCoreModulesList)
	}
	return NewList(f.Modules...), nil
}

// Filter removes every module of resp whose canonical name is in list, along with
// its mapping entry, and returns the removed modules.
// Remaining modules keep their relative order.
func Filter(resp *module.ResolutionResponse, list *List) ([]*module.Module, error) {
	if list.Len() == 0 {
		return nil, nil
	}
	return resp.Retain(func(_ int, m *module.Module) bool {
		return !list.Contains(m.Name)
	})
}
