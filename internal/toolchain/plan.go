// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package toolchain

import (
	"fmt"
	"strings"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
)

// Preprocessor defines emitted by the plan.
const (
	DefineNDEBUG = "NDEBUG"
	DefineSSE    = "WITH_SSE"
	DefineDouble = "WITH_DOUBLE"
	// DefineConfigHeader tells sources that guard their include of config.h
	// to pull in the generated header.
	DefineConfigHeader = "HAVE_CONFIG_H"
)

// Plan is the toolchain selection for one build. Empty command fields mean
// "use the build tool's default".
type Plan struct {
	Toolchain  string   `json:"toolchain"`
	Target     string   `json:"build_target"`
	CC         string   `json:"cc,omitempty"`
	AR         string   `json:"ar,omitempty"`
	LD         string   `json:"ld,omitempty"`
	Ranlib     string   `json:"ranlib,omitempty"`
	Link       string   `json:"link,omitempty"`
	CFlags     []string `json:"cflags"`
	CPPDefines []string `json:"cppdefines"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OptimizationFlags maps a build target to its compiler flags and defines.
// The mapping is fixed; an unknown target yields nil.
func OptimizationFlags(target buildcfg.BuildTarget) (cflags, defines []string) {
	switch target {
	case buildcfg.TargetDebug:
		return []string{"-g", "-O0"}, nil
	case buildcfg.TargetRelease:
		return []string{"-O2"}, []string{DefineNDEBUG}
	case buildcfg.TargetSpeed:
		return []string{"-O3", "-ffast-math", "-funroll-loops", "-fomit-frame-pointer"}, []string{DefineNDEBUG}
	default:
		return nil, nil
	}
}

// Derive builds the plan for cfg on the current host.
func Derive(cfg buildcfg.BuildConfiguration) Plan {
	return DeriveFor(cfg, DetectHost())
}

// DeriveFor builds the plan for cfg as if running on host. SSE flags are
// emitted even when the host lacks SSE2; a warning is recorded instead.
func DeriveFor(cfg buildcfg.BuildConfiguration, host Host) Plan {
	p := Plan{
		Toolchain: cfg.ToolchainName(),
		Target:    string(cfg.BuildTarget),
	}

	if cfg.UseLLVM {
		p.CC = cfg.LLVMCC
		p.AR = cfg.LLVMAR
		p.LD = cfg.LLVMLD
		p.Ranlib = cfg.LLVMRanlib
		p.Link = cfg.LLVMLink
	} else {
		p.CC = cfg.CompilerPath
	}

	cflags, defines := OptimizationFlags(cfg.BuildTarget)
	p.CFlags = append(p.CFlags, cflags...)
	p.CPPDefines = append(p.CPPDefines, defines...)

	if cfg.EnableSSE {
		p.CFlags = append(p.CFlags, "-msse2")
		p.CPPDefines = append(p.CPPDefines, DefineSSE)
		switch {
		case !host.IsX86():
			p.Warnings = append(p.Warnings, fmt.Sprintf("enable_sse is on but host architecture is %s; assuming a cross build", host.Arch))
		case !host.HasSSE2:
			p.Warnings = append(p.Warnings, "enable_sse is on but the host CPU does not report SSE2")
		}
	}
	if cfg.UseDouble {
		p.CPPDefines = append(p.CPPDefines, DefineDouble)
	}

	return p
}

// WithConfigHeader returns a copy of p that also defines HAVE_CONFIG_H, for
// builds that compile against a header written by WriteHeader.
func (p Plan) WithConfigHeader() Plan {
	defines := make([]string, 0, len(p.CPPDefines)+1)
	defines = append(defines, p.CPPDefines...)
	p.CPPDefines = append(defines, DefineConfigHeader)
	return p
}

// CPPFlags renders the defines as -D flags.
func (p Plan) CPPFlags() []string {
	out := make([]string, len(p.CPPDefines))
	for i, d := range p.CPPDefines {
		out[i] = "-D" + d
	}
	return out
}

// Environ renders the plan as KEY=value pairs for a build tool's environment.
// Unset commands are omitted.
func (p Plan) Environ() []string {
	var env []string
	add := func(k, v string) {
		if v != "" {
			env = append(env, k+"="+v)
		}
	}
	add("CC", p.CC)
	add("AR", p.AR)
	add("LD", p.LD)
	add("RANLIB", p.Ranlib)
	add("LINK", p.Link)
	add("CFLAGS", strings.Join(p.CFlags, " "))
	add("CPPFLAGS", strings.Join(p.CPPFlags(), " "))
	return env
}

// Tools returns the distinct commands set in the plan, keyed by role.
func (p Plan) Tools() map[string]string {
	tools := make(map[string]string)
	for role, cmd := range map[string]string{
		"CC":     p.CC,
		"AR":     p.AR,
		"LD":     p.LD,
		"RANLIB": p.Ranlib,
		"LINK":   p.Link,
	} {
		if cmd != "" {
			tools[role] = cmd
		}
	}
	return tools
}
