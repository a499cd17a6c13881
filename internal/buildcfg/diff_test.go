// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package buildcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := Defaults()
	llvm := Defaults()
	llvm.UseLLVM = true

	tests := []struct {
		name    string
		old     BuildConfiguration
		mutate  func(*BuildConfiguration)
		changed []string
		inert   []string
		rebuild bool
	}{
		{
			name:   "identical",
			old:    base,
			mutate: func(*BuildConfiguration) {},
		},
		{
			name:    "target change",
			old:     base,
			mutate:  func(c *BuildConfiguration) { c.BuildTarget = TargetSpeed },
			changed: []string{"build_target"},
			rebuild: true,
		},
		{
			name:    "llvm fields inert while disabled",
			old:     base,
			mutate:  func(c *BuildConfiguration) { c.LLVMCC = "clang"; c.LLVMLink = "llvm-link" },
			changed: []string{"LLVM_CC", "LLVM_LINK"},
			inert:   []string{"LLVM_CC", "LLVM_LINK"},
		},
		{
			name:    "llvm fields count once enabled",
			old:     base,
			mutate:  func(c *BuildConfiguration) { c.UseLLVM = true; c.LLVMCC = "clang" },
			changed: []string{"use_llvm", "LLVM_CC"},
			rebuild: true,
		},
		{
			name:    "compiler inert under llvm",
			old:     llvm,
			mutate:  func(c *BuildConfiguration) { c.CompilerPath = "tcc" },
			changed: []string{"CC"},
			inert:   []string{"CC"},
		},
		{
			name:    "compiler counts without llvm",
			old:     base,
			mutate:  func(c *BuildConfiguration) { c.CompilerPath = "tcc" },
			changed: []string{"CC"},
			rebuild: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := tt.old
			tt.mutate(&next)

			summary, err := Diff(tt.old, next)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, summary.ChangedKeys)
			assert.Equal(t, tt.inert, summary.InertKeys)
			assert.Equal(t, tt.rebuild, summary.RebuildRequired)
			assert.Equal(t, len(tt.changed) > 0, summary.Changed())
		})
	}
}
