// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testdata

import _ "embed"

//go:embed valid.yaml
var Valid []byte

//go:embed missing-name.yaml
var MissingName []byte

//go:embed invalid-version.yaml
var InvalidVersion []byte

//go:embed no-spec.yaml
var NoSpec []byte
