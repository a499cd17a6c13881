// SPDX-License-Identifier: MIT

package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestProbe_DistinctTools(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := buildcfg.Defaults()
	cfg.UseLLVM = true
	plan := DeriveFor(cfg, x86)

	var calls atomic.Int32
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls.Add(1)
		assert.Equal(t, []string{"--version"}, args)
		return []byte("\n" + name + " version 17.0.1\nTarget: x86_64\n"), nil
	}

	results, err := Probe(context.Background(), plan, run, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load(), "llvm-ld serves LD and LINK")

	require.Len(t, results, 4)
	assert.Equal(t, "llvm-ar", results[0].Command)
	assert.Equal(t, "llvm-gcc", results[1].Command)
	assert.Equal(t, "llvm-ld", results[2].Command)
	assert.Equal(t, []string{"LD", "LINK"}, results[2].Roles)
	assert.Equal(t, "llvm-ld version 17.0.1", results[2].Version)
	assert.Equal(t, "llvm-ranlib", results[3].Command)
}

func TestProbe_JoinsFailures(t *testing.T) {
	cfg := buildcfg.Defaults()
	cfg.UseLLVM = true
	plan := DeriveFor(cfg, x86)

	errMissing := errors.New("not found")
	run := func(_ context.Context, name string, _ ...string) ([]byte, error) {
		if name == "llvm-ar" || name == "llvm-ranlib" {
			return nil, errMissing
		}
		return []byte("ok"), nil
	}

	results, err := Probe(context.Background(), plan, run, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissing)
	assert.Contains(t, err.Error(), "llvm-ar (AR)")
	assert.Contains(t, err.Error(), "llvm-ranlib (RANLIB)")
	assert.Len(t, results, 4)
	assert.Equal(t, "ok", results[1].Version)
}

func TestProbe_Timeout(t *testing.T) {
	plan := Plan{CC: "slowcc"}
	run := func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := Probe(context.Background(), plan, run, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProbe_EmptyPlan(t *testing.T) {
	results, err := Probe(context.Background(), Plan{}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := ExecRunner(context.Background(), "sh", "-c", "echo 'cc (GCC) 13.2.0'; echo more")
	require.NoError(t, err)
	assert.Equal(t, "cc (GCC) 13.2.0", firstLine(out))
}
