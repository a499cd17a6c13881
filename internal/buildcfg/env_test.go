// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Precedence(t *testing.T) {
	path := writeConfig(t, "custom.py", "build_target = 'debug'\nenable_sse = 1\n")
	t.Setenv("BUILDCFG_BUILD_TARGET", "speed")
	t.Setenv("BUILDCFG_ENABLE_SSE", "off")
	t.Setenv("BUILDCFG_LLVM_RANLIB", "llvm-ranlib-17")
	t.Setenv("BUILDCFG_CC", "clang")

	res, err := NewLoader(path, WithEnvOverrides()).LoadDetailed()
	require.NoError(t, err)
	cfg := res.Config

	assert.Equal(t, TargetSpeed, cfg.BuildTarget, "env beats file")
	assert.False(t, cfg.EnableSSE)
	assert.Equal(t, "llvm-ranlib-17", cfg.LLVMRanlib)
	assert.Equal(t, "clang", cfg.CompilerPath)
	assert.False(t, cfg.UseDouble, "untouched key keeps its default")

	assert.Equal(t, []string{
		"BUILDCFG_CC", "BUILDCFG_BUILD_TARGET", "BUILDCFG_ENABLE_SSE", "BUILDCFG_LLVM_RANLIB",
	}, res.EnvKeys)
}

func TestEnvOverrides_IgnoredWithoutOption(t *testing.T) {
	path := writeConfig(t, "custom.py", "build_target = 'debug'\n")
	t.Setenv("BUILDCFG_BUILD_TARGET", "speed")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, TargetDebug, cfg.BuildTarget)
}

func TestEnvOverrides_BareNamesNotRead(t *testing.T) {
	t.Setenv("CC", "tcc")
	t.Setenv("LLVM_CC", "clang")

	cfg, err := NewLoader("", WithEnvOverrides()).Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestEnvOverrides_EmptyIsUnset(t *testing.T) {
	path := writeConfig(t, "custom.py", "build_target = 'debug'\n")
	t.Setenv("BUILDCFG_BUILD_TARGET", "")

	res, err := NewLoader(path, WithEnvOverrides()).LoadDetailed()
	require.NoError(t, err)
	assert.Equal(t, TargetDebug, res.Config.BuildTarget)
	assert.Empty(t, res.EnvKeys)
}

func TestEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("BUILDCFG_ENABLE_SSE", "maybe")
	t.Setenv("BUILDCFG_BUILD_TARGET", "fast")

	_, err := NewLoader("", WithEnvOverrides()).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfigurationValue))
	assert.Equal(t, []string{"BUILDCFG_BUILD_TARGET", "BUILDCFG_ENABLE_SSE"}, InvalidFields(err))
}

func TestEnvOverrides_EnableLLVMResolves(t *testing.T) {
	t.Setenv("BUILDCFG_USE_LLVM", "1")

	_, err := NewLoader("", WithEnvOverrides(), WithLookPath(fakeLookPath("llvm-ar"))).Load()
	require.Error(t, err)
	assert.Equal(t, []string{"LLVM_AR"}, InvalidFields(err))
}

func TestLoadDetailed_EnvKeysPerLoad(t *testing.T) {
	loader := NewLoader("", WithEnvOverrides())

	t.Setenv("BUILDCFG_USE_DOUBLE", "1")
	first, err := loader.LoadDetailed()
	require.NoError(t, err)
	assert.Equal(t, []string{"BUILDCFG_USE_DOUBLE"}, first.EnvKeys)

	t.Setenv("BUILDCFG_USE_DOUBLE", "")
	second, err := loader.LoadDetailed()
	require.NoError(t, err)
	assert.Empty(t, second.EnvKeys, "keys from an earlier load do not carry over")
	assert.Equal(t, []string{"BUILDCFG_USE_DOUBLE"}, first.EnvKeys)
}

func TestLoadDetailed_ErrorIsEmpty(t *testing.T) {
	t.Setenv("BUILDCFG_BUILD_TARGET", "fast")

	res, err := NewLoader("", WithEnvOverrides()).LoadDetailed()
	require.Error(t, err)
	assert.Equal(t, LoadResult{}, res)
}
