// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packagerconfig

const (
	HomeEnvVar       = "HPK_HOME"
	LogLevelEnvVar   = "HPK_LOG_LEVEL"
	ResetCacheEnvVar = "HPK_RESET_CACHE"
	PlatformEnvVar   = "HPK_PLATFORM"
	ManifestEnvVar   = "HPK_MANIFEST"
	// PolyfillsEnvVar is a comma separated list of extra polyfills
	PolyfillsEnvVar = "HPK_POLYFILLS"
)
