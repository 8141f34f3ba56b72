// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package namespace decides under which name a module is emitted into
// generated code. Modules owned by a package other than the application are
// prefixed with the application's package name when the build carries a
// manifest reference, so that several applications can share one runtime.
package namespace

import (
	"errors"
	"fmt"
	"strings"
)

const Separator = "@"

var ErrUnqualifiable = errors.New("cannot namespace-qualify module name")

type Qualifier struct {
	appName         string
	enabled         bool
	externalModules map[string]bool
}

// New returns a Qualifier for the application appName.
// Qualification only ever happens when hasManifest is true.
func New(appName string, hasManifest bool, externalModules map[string]bool) *Qualifier {
	return &Qualifier{
		appName:         appName,
		enabled:         hasManifest,
		externalModules: externalModules,
	}
}

// Disabled returns a Qualifier that emits every name unchanged
func Disabled() *Qualifier {
	return &Qualifier{}
}

func (q *Qualifier) Enabled() bool {
	return q.enabled
}

// Qualify returns the name under which the module called name is emitted.
func (q *Qualifier) Qualify(name string) (string, error) {
	if !q.enabled || q.externalModules[name] {
		return name, nil
	}
	if q.appName == "" {
		return "", fmt.Errorf("%w %q: application package name is unknown", ErrUnqualifiable, name)
	}
	if OwningPackage(name) == q.appName {
		return name, nil
	}
	return q.appName + Separator + name, nil
}

// OwningPackage is the first path segment of a canonical name
func OwningPackage(name string) string {
	pkg, _, _ := strings.Cut(name, "/")
	return pkg
}
