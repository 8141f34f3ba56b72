// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"hastepack.dev/x/packager/pkg/packagerconfig"
)

const defaultLevel = "info"

// InitLogging installs the default logger, at the level given by HPK_LOG_LEVEL
func InitLogging() error {
	return InitLoggingTo(os.Stderr)
}

func InitLoggingTo(w io.Writer) error {
	logLevel, ok := os.LookupEnv(packagerconfig.LogLevelEnvVar)
	if !ok {
		logLevel = defaultLevel
	}
	return initLogging(w, logLevel)
}

func initLogging(w io.Writer, logLevel string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid %s: %w", packagerconfig.LogLevelEnvVar, err)
	}

	slogHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(slogHandler))
	return nil
}
