// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packagerconfig

const (
	ConfigFileName  = "hpk.yaml"
	PackageJSONName = "package.json"
	appDirName      = "hpk"
	cacheDirName    = "cache"
)

var DefaultAssetExts = []string{"bmp", "gif", "jpg", "jpeg", "png", "psd", "svg", "webp", "ttf", "otf", "mp4", "mp3"}
