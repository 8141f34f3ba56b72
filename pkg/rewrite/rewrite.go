// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package rewrite replaces the reference strings of require/import/export
// statements with canonical module names. It works on text only.
package rewrite

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"hastepack.dev/x/packager/pkg/module"
)

// MaxWindow bounds how far past a dependency offset the reference string may start and end
const MaxWindow = 512

var (
	importRE  = regexp.MustCompile(`(\bimport\s+(?:[^'"]+\s+from\s+)??)(['"])([^'"]+)(['"])`)
	exportRE  = regexp.MustCompile(`(\bexport\s+(?:[^'"]+\s+from\s+)??)(['"])([^'"]+)(['"])`)
	requireRE = regexp.MustCompile(`(\brequire\s*?\(\s*?)(['"])([^'"]+)(['"]\s*?\))`)
)

// EmitFunc returns the name to write into code for a canonical module name
type EmitFunc func(canonicalName string) (string, error)

// Identity emits canonical names unchanged
func Identity(name string) (string, error) {
	return name, nil
}

// Requires rewrites every resolved reference in code to its emitted canonical name.
// When offsets is nil, references are located by pattern; otherwise only the
// first quoted string following each offset is considered.
func Requires(code string, pairs []module.DependencyPair, offsets []int, emit EmitFunc) (string, error) {
	resolved := resolvedNames(pairs)
	if len(resolved) == 0 {
		return code, nil
	}
	r := &rewriter{resolved: resolved, emit: emit}

	if offsets != nil {
		return r.atOffsets(code, offsets)
	}
	return r.byPattern(code)
}

// reference string -> canonical name
func resolvedNames(pairs []module.DependencyPair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.Resolved() && p.Module.Name != "" {
			m[p.Reference] = p.Module.Name
		}
	}
	return m
}

type rewriter struct {
	resolved map[string]string
	emit     EmitFunc
}

// replacement returns the quoted emitted name for ref, or ok=false when ref is unresolved
func (r *rewriter) replacement(quote byte, ref string) (string, bool, error) {
	name, ok := r.resolved[ref]
	if !ok {
		return "", false, nil
	}
	emitted, err := r.emit(name)
	if err != nil {
		return "", false, fmt.Errorf("rewriting reference %q: %w", ref, err)
	}
	return string(quote) + emitted + string(quote), true, nil
}

func (r *rewriter) atOffsets(code string, offsets []int) (string, error) {
	sorted := slices.Clone(offsets)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	b.Grow(len(code))

	prev := 0
	for i, offset := range sorted {
		if offset < 0 || offset > len(code) {
			return "", fmt.Errorf("dependency offset %d is outside of the code (length %d)", offset, len(code))
		}
		end := len(code)
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		end = min(end, offset+MaxWindow)

		b.WriteString(code[prev:offset])
		start, stop, ok := firstQuoted(code[offset:end])
		if !ok {
			prev = offset
			continue
		}
		start, stop = start+offset, stop+offset

		repl, ok, err := r.replacement(code[start], code[start+1:stop-1])
		if err != nil {
			return "", err
		}
		if !ok {
			prev = offset
			continue
		}
		b.WriteString(code[offset:start])
		b.WriteString(repl)
		prev = stop
	}
	b.WriteString(code[prev:])
	return b.String(), nil
}

// firstQuoted finds the first '...' or "..." literal in s that contains no quote characters.
// stop is exclusive and includes the closing quote.
func firstQuoted(s string) (start, stop int, ok bool) {
	for i := 0; i < len(s); i++ {
		if !isQuote(s[i]) {
			continue
		}
		j := strings.IndexAny(s[i+1:], `'"`)
		if j < 0 {
			return 0, 0, false
		}
		j += i + 1
		if s[j] == s[i] {
			return i, j + 1, true
		}
	}
	return 0, 0, false
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"'
}

func (r *rewriter) byPattern(code string) (string, error) {
	var err error
	for _, re := range []*regexp.Regexp{importRE, exportRE, requireRE} {
		code, err = r.replaceAll(re, code)
		if err != nil {
			return "", err
		}
	}
	return code, nil
}

// replaceAll substitutes group 3 of every match of re whose quotes (groups 2 and 4) agree
func (r *rewriter) replaceAll(re *regexp.Regexp, code string) (string, error) {
	matches := re.FindAllStringSubmatchIndex(code, -1)
	if len(matches) == 0 {
		return code, nil
	}

	var b strings.Builder
	b.Grow(len(code))
	prev := 0
	for _, m := range matches {
		quoteStart, refStart, refEnd, postStart := m[4], m[6], m[7], m[8]
		quote := code[quoteStart]
		if code[postStart] != quote {
			continue
		}
		repl, ok, err := r.replacement(quote, code[refStart:refEnd])
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		b.WriteString(code[prev:quoteStart])
		b.WriteString(repl)
		prev = postStart + 1
	}
	b.WriteString(code[prev:])
	return b.String(), nil
}
