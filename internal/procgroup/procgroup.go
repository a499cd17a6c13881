// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup starts commands in their own process group so that a
// timeout also reaps the children a compiler driver or wrapper script spawns.
package procgroup

import (
	"context"
	"os/exec"
	"time"
)

// DefaultWaitDelay bounds how long Wait blocks on output pipes after the
// group was killed.
const DefaultWaitDelay = 2 * time.Second

// CommandContext is exec.CommandContext with the command in a new process
// group; cancelling ctx kills the whole group.
func CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	// #nosec G204 -- callers pass tool names from validated configuration
	cmd := exec.CommandContext(ctx, name, args...)
	Set(cmd)
	cmd.Cancel = func() error { return Kill(cmd) }
	cmd.WaitDelay = DefaultWaitDelay
	return cmd
}
