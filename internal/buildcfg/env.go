// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"fmt"

	"github.com/ManuGH/buildcfg/internal/validate"
	"github.com/kelseyhightower/envconfig"
)

// envOverrides mirrors the registry's env variables. Field names are split on
// case changes to form the variable name: LlvmRanlib -> BUILDCFG_LLVM_RANLIB.
// Do not add envconfig tags: envconfig falls back to the bare tag name, which
// would pick up an unrelated CC or LLVM_CC from the shell.
type envOverrides struct {
	CC          *string `split_words:"true"`
	BuildTarget *string `split_words:"true"`
	EnableSse   *string `split_words:"true"`
	UseDouble   *string `split_words:"true"`
	UseLlvm     *string `split_words:"true"`
	LlvmCc      *string `split_words:"true"`
	LlvmAr      *string `split_words:"true"`
	LlvmLd      *string `split_words:"true"`
	LlvmRanlib  *string `split_words:"true"`
	LlvmLink    *string `split_words:"true"`
}

// byKey maps each canonical registry key to its raw env value.
func (e envOverrides) byKey() map[string]*string {
	return map[string]*string{
		"CC":           e.CC,
		"build_target": e.BuildTarget,
		"enable_sse":   e.EnableSse,
		"use_double":   e.UseDouble,
		"use_llvm":     e.UseLlvm,
		"LLVM_CC":      e.LlvmCc,
		"LLVM_AR":      e.LlvmAr,
		"LLVM_LD":      e.LlvmLd,
		"LLVM_RANLIB":  e.LlvmRanlib,
		"LLVM_LINK":    e.LlvmLink,
	}
}

// readEnvConfig decodes BUILDCFG_* variables into a FileConfig and returns
// the names of the variables it used. Empty variables count as unset.
func (l *Loader) readEnvConfig(r *Registry) (FileConfig, []string, error) {
	var raw envOverrides
	if err := envconfig.Process(EnvPrefix, &raw); err != nil {
		return FileConfig{}, nil, fmt.Errorf("process env: %w", err)
	}

	var (
		fc   FileConfig
		used []string
	)
	v := validate.New()
	values := raw.byKey()
	for _, entry := range r.Entries() {
		val := values[entry.Key]
		if val == nil {
			continue
		}
		if *val == "" {
			l.logger.Debug().
				Str("env", entry.Env).
				Str("source", "default").
				Msg("ignoring empty environment variable")
			continue
		}
		used = append(used, entry.Env)

		value, err := coerceValue(entry.Kind, *val)
		if err != nil {
			v.AddError(entry.Env, err.Error(), *val)
			continue
		}
		if err := fc.set(entry, value); err != nil {
			return fc, nil, err
		}
		l.logger.Info().
			Str("key", entry.Key).
			Str("env", entry.Env).
			Str("source", "environment").
			Msg("configuration value overridden by environment")
	}
	if err := v.Err(); err != nil {
		return fc, nil, err
	}
	return fc, used, nil
}
