// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

package procgroup

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandContext_KillsChildren(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// The shell prints the pid of a background child, then blocks.
	cmd := CommandContext(ctx, "sh", "-c", "sleep 30 & echo $!; wait")
	out, err := cmd.Output()
	require.Error(t, err)
	assert.Less(t, cmd.ProcessState.ExitCode(), 1, "killed by signal")

	childPID, convErr := strconv.Atoi(strings.TrimSpace(string(out)))
	require.NoError(t, convErr, "output %q", out)

	// The child was in the same group and must be gone.
	require.Eventually(t, func() bool { return !running(childPID) }, 2*time.Second, 20*time.Millisecond)
}

// running reports whether pid exists and is not a zombie awaiting reaping.
func running(pid int) bool {
	if syscall.Kill(pid, 0) == syscall.ESRCH {
		return false
	}
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return true
	}
	return !strings.Contains(string(stat), ") Z ")
}

func TestKill_NilAndExited(t *testing.T) {
	assert.NoError(t, Kill(nil))
	assert.NoError(t, Kill(&exec.Cmd{}))

	cmd := exec.Command("true")
	Set(cmd)
	if err := cmd.Run(); err != nil {
		t.Skipf("true not runnable: %v", err)
	}
	assert.NoError(t, Kill(cmd))
}
