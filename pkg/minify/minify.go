// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package minify is the default minifier for wrapped modules
package minify

import (
	"context"
	"fmt"
	"log/slog"

	"hastepack.dev/x/packager/pkg/wrapper"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

const mediaType = "application/javascript"

var m = func() *minify.M {
	m := minify.New()
	m.AddFunc(mediaType, js.Minify)
	return m
}()

// JS minifies code. The source map is dropped, the minifier does not produce one.
func JS(ctx context.Context, path, code, sourceMap string) (*wrapper.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := m.String(mediaType, code)
	if err != nil {
		return nil, fmt.Errorf("minifying %q: %w", path, err)
	}
	if sourceMap != "" {
		slog.Debug("dropping source map of minified module", "path", path)
	}
	return &wrapper.Result{Code: out}, nil
}

var _ wrapper.MinifyFunc = JS
