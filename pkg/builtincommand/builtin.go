// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package builtincommand

type BuiltinCommand string

const (
	Deps      BuiltinCommand = "deps"
	Wrap      BuiltinCommand = "wrap"
	Polyfills BuiltinCommand = "polyfills"
	Version   BuiltinCommand = "version"
)

var BuiltinCommands = []BuiltinCommand{Deps, Wrap, Polyfills, Version}
