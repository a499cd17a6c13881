// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package buildcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FieldCoverage(t *testing.T) {
	reg, err := GetRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.ValidateFieldCoverage())
}

func TestRegistry_EnvNamesMatchOverrides(t *testing.T) {
	reg, err := GetRegistry()
	require.NoError(t, err)

	keys := envOverrides{}.byKey()
	assert.Len(t, keys, len(reg.Entries()))
	for _, e := range reg.Entries() {
		_, ok := keys[e.Key]
		assert.True(t, ok, "no env override for %s", e.Key)
	}

	assert.Equal(t, "BUILDCFG_LLVM_RANLIB", reg.ByField["LLVMRanlib"].Env)
	assert.Equal(t, "BUILDCFG_BUILD_TARGET", reg.ByField["BuildTarget"].Env)
	assert.Equal(t, "BUILDCFG_CC", reg.ByField["CompilerPath"].Env)
}

func TestRegistry_Aliases(t *testing.T) {
	reg, err := GetRegistry()
	require.NoError(t, err)

	e, ok := reg.Lookup("compiler_path")
	require.True(t, ok)
	assert.Equal(t, "CC", e.Key)

	e, ok = reg.Lookup("llvm_ranlib")
	require.True(t, ok)
	assert.Equal(t, "LLVM_RANLIB", e.Key)

	_, ok = reg.Lookup("Build_Target")
	assert.False(t, ok, "keys are case sensitive")
}

func TestBuildRegistry_RejectsDuplicates(t *testing.T) {
	_, err := buildRegistry([]ConfigEntry{
		{Key: "CC", FieldPath: "CompilerPath"},
		{Key: "cc", Aliases: []string{"CC"}, FieldPath: "Other"},
	})
	assert.ErrorContains(t, err, "duplicate registry key")

	_, err = buildRegistry([]ConfigEntry{
		{Key: "a", FieldPath: "CompilerPath"},
		{Key: "b", FieldPath: "CompilerPath"},
	})
	assert.ErrorContains(t, err, "duplicate registry field")
}
