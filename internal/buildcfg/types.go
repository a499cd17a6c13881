// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"fmt"
	"strings"
)

// BuildTarget is the named optimization/debug profile.
type BuildTarget string

const (
	TargetDebug   BuildTarget = "debug"   // -g, no optimization
	TargetRelease BuildTarget = "release" // -O2
	TargetSpeed   BuildTarget = "speed"   // maximum optimization, experimental
)

// BuildTargets lists every valid target in documentation order.
func BuildTargets() []BuildTarget {
	return []BuildTarget{TargetDebug, TargetRelease, TargetSpeed}
}

func buildTargetNames() []string {
	targets := BuildTargets()
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = string(t)
	}
	return out
}

// Valid reports whether t is one of the known targets.
func (t BuildTarget) Valid() bool {
	switch t {
	case TargetDebug, TargetRelease, TargetSpeed:
		return true
	default:
		return false
	}
}

func (t BuildTarget) String() string { return string(t) }

// ParseBuildTarget parses s after trimming whitespace. Matching is exact:
// "Release" is rejected.
func ParseBuildTarget(s string) (BuildTarget, error) {
	t := BuildTarget(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("must be one of %s, got %q", strings.Join(buildTargetNames(), ", "), s)
	}
	return t, nil
}

// BuildConfiguration is the effective build configuration. It is a plain
// value: loaders return a fresh copy and nothing mutates it afterwards.
type BuildConfiguration struct {
	// CompilerPath overrides the C compiler. Empty means toolchain default.
	CompilerPath string      `json:"CC,omitempty"`
	BuildTarget  BuildTarget `json:"build_target"`
	EnableSSE    bool        `json:"enable_sse"`
	// UseDouble selects double precision; float otherwise.
	UseDouble bool `json:"use_double"`
	UseLLVM   bool `json:"use_llvm"`

	// LLVM toolchain. Inert unless UseLLVM is set.
	LLVMCC     string `json:"LLVM_CC"`
	LLVMAR     string `json:"LLVM_AR"`
	LLVMLD     string `json:"LLVM_LD"`
	LLVMRanlib string `json:"LLVM_RANLIB"`
	LLVMLink   string `json:"LLVM_LINK"`
}

// Precision names the floating-point width selected by UseDouble.
func (c BuildConfiguration) Precision() string {
	if c.UseDouble {
		return "double"
	}
	return "float"
}

// ToolchainName is "llvm" when the LLVM toolchain is substituted, "default" otherwise.
func (c BuildConfiguration) ToolchainName() string {
	if c.UseLLVM {
		return "llvm"
	}
	return "default"
}

// Defaults returns the configuration used when every key is omitted.
func Defaults() BuildConfiguration {
	var cfg BuildConfiguration
	reg, err := GetRegistry()
	if err != nil {
		// The registry is static; a failure here is a programming error.
		panic(fmt.Sprintf("buildcfg: invalid registry: %v", err))
	}
	if err := reg.ApplyDefaults(&cfg); err != nil {
		panic(fmt.Sprintf("buildcfg: apply defaults: %v", err))
	}
	return cfg
}
