// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report renders a finalized resolution for people and tools
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"hastepack.dev/x/packager/pkg/module"
	"hastepack.dev/x/packager/pkg/resolver/resolvererrors"
	"hastepack.dev/x/packager/pkg/schema"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

const Kind = "Resolution"

type Format string

const (
	Table Format = "table"
	YAML  Format = "yaml"
	JSON  Format = "json"
	List  Format = "list"
)

var Formats = []Format{Table, YAML, JSON, List}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if !lo.Contains(Formats, f) {
		return "", fmt.Errorf("unknown output format %q, must be one of %v", s, Formats)
	}
	return f, nil
}

type ModuleKind string

const (
	KindModule   ModuleKind = "module"
	KindPolyfill ModuleKind = "polyfill"
	KindJSON     ModuleKind = "json"
	KindAsset    ModuleKind = "asset"
)

func kindOf(m *module.Module) ModuleKind {
	switch {
	case m.IsPolyfill:
		return KindPolyfill
	case m.IsJSON:
		return KindJSON
	case m.IsAsset:
		return KindAsset
	}
	return KindModule
}

type Entry struct {
	ID           int        `yaml:"id" json:"id"`
	Name         string     `yaml:"name" json:"name"`
	Kind         ModuleKind `yaml:"kind" json:"kind"`
	Path         string     `yaml:"path" json:"path"`
	Dependencies []string   `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	// Unresolved references are left as written in the emitted code
	Unresolved []string `yaml:"unresolved,omitempty" json:"unresolved,omitempty"`
}

type Report struct {
	schema.ManifestMeta `yaml:",inline"`

	EntryPoint string                            `yaml:"entryPoint" json:"entryPoint"`
	Platform   string                            `yaml:"platform,omitempty" json:"platform,omitempty"`
	Modules    []*Entry                          `yaml:"modules,omitempty" json:"modules,omitempty"`
	Errors     []*resolvererrors.ResolutionError `yaml:"errors,omitempty" json:"-"`
}

// New describes a finalized resolution
func New(resp *module.ResolutionResponse, entryPoint, platform string) (*Report, error) {
	r := &Report{
		ManifestMeta: schema.Meta(Kind),
		EntryPoint:   entryPoint,
		Platform:     platform,
	}
	for _, m := range resp.Modules() {
		id, err := resp.ModuleID(m)
		if err != nil {
			return nil, err
		}
		pairs := resp.ResolvedDependencyPairs(m)
		r.Modules = append(r.Modules, &Entry{
			ID:   id,
			Name: m.String(),
			Kind: kindOf(m),
			Path: m.Path,
			Dependencies: nilIfEmpty(lo.FilterMap(pairs, func(p module.DependencyPair, _ int) (string, bool) {
				if !p.Resolved() {
					return "", false
				}
				return p.Module.String(), true
			})),
			Unresolved: nilIfEmpty(lo.FilterMap(pairs, func(p module.DependencyPair, _ int) (string, bool) {
				return p.Reference, !p.Resolved()
			})),
		})
	}
	return r, nil
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Failed reports err for entryPoint instead of a module list
func Failed(err error, entryPoint, platform string, classifiers ...resolvererrors.Classifier) *Report {
	return &Report{
		ManifestMeta: schema.Meta(Kind),
		EntryPoint:   entryPoint,
		Platform:     platform,
		Errors:       []*resolvererrors.ResolutionError{resolvererrors.Standardize(err, classifiers...)},
	}
}

func (r *Report) Render(f Format) (string, error) {
	switch f {
	case Table:
		return r.Table(), nil
	case YAML:
		bytes, err := yaml.Marshal(r)
		if err != nil {
			return "", err
		}
		return string(bytes), nil
	case JSON:
		bytes, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", err
		}
		return string(bytes), nil
	case List:
		return strings.Join(lo.Map(r.Modules, func(e *Entry, _ int) string { return e.Name }), "\n"), nil
	}
	return "", fmt.Errorf("unknown output format %q", f)
}

func (r *Report) Table() string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers("ID", "KIND", "NAME", "DEPS").
		Rows(lo.Map(r.Modules, func(e *Entry, _ int) []string {
			name := e.Name
			switch {
			case e.Path == r.EntryPoint:
				name = lipgloss.NewStyle().
					Foreground(lipgloss.Color("2")).
					Bold(true).
					Render(name)
			case e.Kind == KindPolyfill:
				name = lipgloss.NewStyle().
					Faint(true).
					Italic(true).
					Render(name)
			}

			deps := strconv.Itoa(len(e.Dependencies))
			if len(e.Unresolved) > 0 {
				deps += fmt.Sprintf(" (%d unresolved)", len(e.Unresolved))
			}
			return []string{strconv.Itoa(e.ID), string(e.Kind), name, deps}
		})...).
		String()
}
