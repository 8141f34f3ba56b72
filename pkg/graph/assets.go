// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

const assetsLocation = "/assets"

// assetDescriptor is what an asset module exports at runtime
type assetDescriptor struct {
	PackagerAsset      bool   `json:"__packager_asset"`
	HTTPServerLocation string `json:"httpServerLocation"`
	Name               string `json:"name"`
	Type               string `json:"type"`
}

func (g *FS) assetCode(path string) (string, error) {
	dir := filepath.Dir(path)
	root, ok := lo.Find(append(g.opts.AssetRoots, g.opts.Roots...), func(r string) bool {
		return dir == r || strings.HasPrefix(dir, r+string(filepath.Separator))
	})
	location := assetsLocation
	if ok {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return "", err
		}
		if rel != "." {
			location += "/" + filepath.ToSlash(rel)
		}
	}

	ext := filepath.Ext(path)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(assetDescriptor{
		PackagerAsset:      true,
		HTTPServerLocation: location,
		Name:               strings.TrimSuffix(filepath.Base(path), ext),
		Type:               strings.TrimPrefix(ext, "."),
	})
	if err != nil {
		return "", err
	}
	return "module.exports = " + strings.TrimSuffix(buf.String(), "\n") + ";", nil
}
