// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads the manifest reference of a build. A build that
// carries one namespace-qualifies every module that neither belongs to the
// application nor is listed as external.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"hastepack.dev/x/packager/pkg/schema"
	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidManifest = fmt.Errorf("invalid manifest")
var ErrMissingManifestField = fmt.Errorf("%w: a required field is missing", ErrInvalidManifest)

const Kind = "Manifest"

type Manifest struct {
	AbsolutePath string `yaml:"-"`

	schema.ManifestMeta `yaml:",inline"`
	Spec                *Spec `yaml:"spec"`
}

type Spec struct {
	// Name of the runtime the manifest describes
	Name    string  `yaml:"name"`
	Version *SemVer `yaml:"version"`
	// ExternalModules are provided by the runtime and never namespace-qualified
	ExternalModules []string `yaml:"external-modules"`
	// Packager is a semver constraint on the hpk versions that can build against this runtime
	Packager string `yaml:"packager,omitempty"`
}

// ExternalModules returns the allow-list form of Spec.ExternalModules
func (m *Manifest) ExternalModules() map[string]bool {
	if m == nil || m.Spec == nil {
		return map[string]bool{}
	}
	return lo.SliceToMap(m.Spec.ExternalModules, func(name string) (string, bool) {
		return name, true
	})
}

func (m *Manifest) String() string {
	if m.Spec.Version == nil {
		return m.Spec.Name
	}
	v := m.Spec.Version.Value()
	return fmt.Sprintf("%s@%s", m.Spec.Name, v.String())
}

type SemVer semver.Version

func (v *SemVer) Value() semver.Version {
	return (semver.Version)(*v)
}

func (v *SemVer) UnmarshalYAML(data []byte) error {
	var versionStr string
	if err := yaml.Unmarshal(data, &versionStr); err != nil {
		return fmt.Errorf("failed to unmarshal 'version': %w", err)
	}
	parsedVersion, err := semver.NewVersion(versionStr)
	if err != nil {
		return fmt.Errorf("invalid semantic version: %w", err)
	}
	*v = SemVer(*parsedVersion)
	return nil
}

func (v *SemVer) MarshalYAML() ([]byte, error) {
	s := v.Value()
	return []byte(s.String()), nil
}

var _ yaml.BytesUnmarshaler = (*SemVer)(nil)
var _ yaml.BytesMarshaler = (*SemVer)(nil)

func Read(filePath string) (*Manifest, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return ReadContents(bytes, abs)
}

func ReadContents(contents []byte, absPath string) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(contents, &m, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if err := schema.Validate(Kind, m.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, err.Error())
	}

	if m.Spec == nil {
		return nil, fmt.Errorf("%w: 'spec'", ErrMissingManifestField)
	}
	if m.Spec.Name == "" {
		return nil, fmt.Errorf("%w: 'spec.name'", ErrMissingManifestField)
	}

	if m.Spec.Packager != "" {
		if _, err := semver.NewConstraint(m.Spec.Packager); err != nil {
			return nil, fmt.Errorf("%w: 'spec.packager': %w", ErrInvalidManifest, err)
		}
	}

	m.AbsolutePath = absPath
	return &m, nil
}
