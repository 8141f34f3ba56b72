// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/juju/fslock"
)

const lockPollInterval = 50 * time.Millisecond

// WithLock runs action while holding the lockfile at lockFilePath.
// It blocks until the lock is obtained or ctx is done. Other hpk processes
// sharing the same cache directory wait on the same file.
//
// The lock is released by the OS if the process dies while holding it.
func WithLock(ctx context.Context, lockFilePath string, action func() error) error {
	if err := EnsureDirs(filepath.Dir(lockFilePath)); err != nil {
		return err
	}

	lock := fslock.New(lockFilePath)
	err := lock.TryLock()
	switch {
	case errors.Is(err, fslock.ErrLocked):
		slog.Debug("cache is locked by another process, waiting", "lock", lockFilePath)
		if err := pollLock(ctx, lock); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release lock", "lock", lockFilePath, "err", err.Error())
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return action()
}

// fslock has no context-aware variant of Lock
func pollLock(ctx context.Context, lock *fslock.Lock) error {
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()
	for {
		err := lock.TryLock()
		if err == nil {
			return nil
		}
		if !errors.Is(err, fslock.ErrLocked) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
