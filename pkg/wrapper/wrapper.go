// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"hastepack.dev/x/packager/pkg/module"
)

const DefaultDefineFn = "__d"

const globalReference = "typeof global !== 'undefined' ? global : typeof self !== 'undefined' ? self : this"

// ErrModuleSyntax is returned for code that still holds import or export
// statements. A factory function body can't contain them, so such modules
// need a transform to CommonJS first.
var ErrModuleSyntax = errors.New("module still contains import/export statements, configure a transform to CommonJS")

// a statement-level import or export at the start of a line. import() calls don't match.
var moduleSyntaxRE = regexp.MustCompile(`(?m)^[ \t]*(?:import[ \t]*(?:[{*'"]|[A-Za-z_$][\w$]*[ \t]*(?:,|\bfrom\b))|export[ \t]+(?:default|const|let|var|function|class|async)\b|export[ \t]*[{*])`)

// HasModuleSyntax reports whether code contains statement-level import or export
func HasModuleSyntax(code string) bool {
	return moduleSyntaxRE.MatchString(code)
}

type Result struct {
	Code string
	Map  string
}

// MinifyFunc minifies the wrapped code of the module at path
type MinifyFunc func(ctx context.Context, path, code, sourceMap string) (*Result, error)

type Wrapper struct {
	defineFn string
	minify   MinifyFunc
}

func New(defineFn string, minify MinifyFunc) *Wrapper {
	if defineFn == "" {
		defineFn = DefaultDefineFn
	}
	return &Wrapper{defineFn: defineFn, minify: minify}
}

type Input struct {
	Module *module.Module
	// Name is the emitted (possibly namespace-qualified) canonical name
	Name string
	// Code must already have its references rewritten
	Code   string
	Map    string
	Dev    bool
	Minify bool
}

// Wrap turns a module's code into a runtime-loadable definition.
func (w *Wrapper) Wrap(ctx context.Context, in Input) (*Result, error) {
	code := in.Code
	if in.Module.IsJSON {
		code = JSON(code)
	}

	if in.Module.IsPolyfill {
		code = Polyfill(code)
	} else {
		if !in.Module.IsJSON && !in.Module.IsAsset && HasModuleSyntax(code) {
			return nil, fmt.Errorf("%s: %w", in.Module.Path, ErrModuleSyntax)
		}
		var err error
		code, err = Define(w.defineFn, in.Name, code, in.Dev)
		if err != nil {
			return nil, err
		}
	}

	if !in.Minify {
		return &Result{Code: code, Map: in.Map}, nil
	}
	return w.Minify(ctx, in.Module.Path, code, in.Map)
}

func (w *Wrapper) Minify(ctx context.Context, path, code, sourceMap string) (*Result, error) {
	if w.minify == nil {
		return nil, fmt.Errorf("minification of %q requested but no minifier is configured", path)
	}
	return w.minify(ctx, path, code, sourceMap)
}

// JSON turns JSON data into a CommonJS module body
func JSON(code string) string {
	return "module.exports = " + code
}

// Polyfill runs code in the global scope
func Polyfill(code string) string {
	return strings.Join([]string{
		"(function(global) {",
		code,
		"\n})(" + globalReference + ");",
	}, "")
}

// Define registers code as the factory of the module called name.
// Dev builds repeat the name as a verbose label.
func Define(defineFn, name, code string, dev bool) (string, error) {
	quoted, err := stringify(name)
	if err != nil {
		return "", err
	}

	parts := []string{
		defineFn + "(/* " + name + " */",
		"function(global, require, module, exports) {",
		code,
		"\n}, ",
		quoted,
	}
	if dev {
		parts = append(parts, ", null, "+quoted)
	}
	parts = append(parts, ");")
	return strings.Join(parts, ""), nil
}

// stringify quotes s the way JavaScript's JSON.stringify does
func stringify(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
