// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packagerversion

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// To be populated at build-time, e.g.:
// go build -ldflags "-X 'hastepack.dev/x/packager/pkg/packagerversion.PackagerVersion=1.2.3'"
var (
	PackagerVersion string
	Build           string
	BuildDate       string
)

type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Build     string `json:"build" yaml:"build"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

func defaultUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func Get() VersionInfo {
	return VersionInfo{
		Version:   defaultUnknown(PackagerVersion),
		Build:     defaultUnknown(Build),
		BuildDate: defaultUnknown(BuildDate),
	}
}

// Semver parses the build's version. Development builds have none.
func Semver() (*semver.Version, error) {
	if PackagerVersion == "" {
		return nil, fmt.Errorf("development build has no version")
	}
	return semver.NewVersion(PackagerVersion)
}

// Satisfies reports whether this build matches constraint, e.g. ">= 1.2, < 2".
// Development builds satisfy every constraint.
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}
	if PackagerVersion == "" {
		return true, nil
	}
	v, err := Semver()
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
