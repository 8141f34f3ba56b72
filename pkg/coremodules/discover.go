// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package coremodules

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	FileName = "core-modules.yaml"
	// FallbackPackage ships the list of the shared runtime when the project doesn't provide one
	FallbackPackage = "rn-core"
)

// Discover looks for the core modules list in dir, then in the fallback package
// under dir's node_modules. It returns an empty list if neither exists.
func Discover(dir string) (*List, error) {
	candidates := []string{
		filepath.Join(dir, FileName),
		filepath.Join(dir, "node_modules", FallbackPackage, FileName),
	}
	for _, p := range candidates {
		_, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, err
		}
		slog.Debug("using core modules list", "path", p)
		return Read(p)
	}
	return NewList(), nil
}
