// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"github.com/ManuGH/buildcfg/internal/validate"
)

// Validate checks every field against its domain. It does not look at the
// host; see ResolveLLVM.
func Validate(cfg BuildConfiguration) error {
	v := validate.New()

	v.OneOf("build_target", string(cfg.BuildTarget), buildTargetNames())

	if cfg.UseLLVM {
		v.NotEmpty("LLVM_CC", cfg.LLVMCC)
		v.NotEmpty("LLVM_AR", cfg.LLVMAR)
		v.NotEmpty("LLVM_LD", cfg.LLVMLD)
		v.NotEmpty("LLVM_RANLIB", cfg.LLVMRanlib)
		v.NotEmpty("LLVM_LINK", cfg.LLVMLink)
	}

	if !v.IsValid() {
		return v.Err()
	}
	return nil
}

// LLVMPaths holds the host paths of the LLVM toolchain binaries.
type LLVMPaths struct {
	CC     string
	AR     string
	LD     string
	Ranlib string
	Link   string
}

// ResolveLLVM resolves the five LLVM binaries on the host when UseLLVM is
// set. With UseLLVM off the fields are inert and the zero value is returned.
// A nil lookPath uses exec.LookPath.
func ResolveLLVM(cfg BuildConfiguration, lookPath validate.LookPathFunc) (LLVMPaths, error) {
	if !cfg.UseLLVM {
		return LLVMPaths{}, nil
	}

	v := validate.New()
	paths := LLVMPaths{
		CC:     v.Executable("LLVM_CC", cfg.LLVMCC, lookPath),
		AR:     v.Executable("LLVM_AR", cfg.LLVMAR, lookPath),
		LD:     v.Executable("LLVM_LD", cfg.LLVMLD, lookPath),
		Ranlib: v.Executable("LLVM_RANLIB", cfg.LLVMRanlib, lookPath),
		Link:   v.Executable("LLVM_LINK", cfg.LLVMLink, lookPath),
	}
	if !v.IsValid() {
		return LLVMPaths{}, v.Err()
	}
	return paths, nil
}
