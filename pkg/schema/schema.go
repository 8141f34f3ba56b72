// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
)

const (
	APIGroup   = "hastepack.dev"
	Version    = "v1"
	APIVersion = APIGroup + "/" + Version
)

// ManifestMeta identifies the schema of every YAML document the packager reads or writes
type ManifestMeta struct {
	APIVersion string `yaml:"apiVersion" json:"apiVersion"`
	Kind       string `yaml:"kind" json:"kind"`
}

// Meta returns the current ManifestMeta for kind
func Meta(kind string) ManifestMeta {
	return ManifestMeta{APIVersion: APIVersion, Kind: kind}
}

// Validate checks that target is a document of the given kind in the current api version
func Validate(kind string, target ManifestMeta) error {
	return Meta(kind).ValidateSchema(target)
}

func (m ManifestMeta) ValidateSchema(target ManifestMeta) error {
	switch {
	case target.Kind == "":
		return fmt.Errorf("missing required field 'kind'")
	case target.Kind != m.Kind:
		return fmt.Errorf("unsupported kind %q. expected %q", target.Kind, m.Kind)
	case target.APIVersion == "":
		return fmt.Errorf("missing required field 'apiVersion'")
	case target.APIVersion != m.APIVersion:
		return fmt.Errorf("unsupported apiVersion %q. expected %q", target.APIVersion, m.APIVersion)
	}
	return nil
}
