// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package buildcfg

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// EnvPrefix prefixes every environment override (BUILDCFG_BUILD_TARGET, ...).
const EnvPrefix = "BUILDCFG"

// Kind selects how a raw file or env value is decoded.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindTarget
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindTarget:
		return "enum"
	default:
		return "string"
	}
}

// Group orders related keys in docs and serialized files.
type Group string

const (
	GroupCompiler  Group = "compiler"
	GroupTarget    Group = "target"
	GroupCodegen   Group = "codegen"
	GroupPrecision Group = "precision"
	GroupLLVM      Group = "llvm"
)

// ConfigEntry defines a single configuration key's metadata.
type ConfigEntry struct {
	Key       string   // Canonical file key (e.g. "build_target")
	Aliases   []string // Accepted alternative spellings
	Env       string   // Environment variable (e.g. "BUILDCFG_BUILD_TARGET")
	FieldPath string   // BuildConfiguration field (e.g. "BuildTarget")
	Kind      Kind
	Group     Group
	Default   any      // nil means unset
	Example   string   // Shown commented-out when the value is unset
	Doc       []string // Comment lines written above the key
}

// Registry manages the configuration key inventory.
type Registry struct {
	entries []ConfigEntry
	ByKey   map[string]ConfigEntry // canonical keys and aliases
	ByField map[string]ConfigEntry
	ByEnv   map[string]ConfigEntry
}

var (
	globalRegistry    *Registry
	globalRegistryErr error
	registryOnce      sync.Once
)

// GetRegistry returns the global configuration registry.
// It returns an error if the registry contains duplicates or is otherwise invalid.
// Thread-safe via sync.Once.
func GetRegistry() (*Registry, error) {
	registryOnce.Do(func() {
		globalRegistry, globalRegistryErr = buildRegistry(registryEntries())
	})
	return globalRegistry, globalRegistryErr
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func registryEntries() []ConfigEntry {
	return []ConfigEntry{
		// --- COMPILER ---
		{Key: "CC", Aliases: []string{"compiler_path"}, Env: envName("CC"), FieldPath: "CompilerPath", Kind: KindString, Group: GroupCompiler,
			Example: "gcc",
			Doc:     []string{"If you want to specify your C compiler, uncomment below line and set it."}},

		// --- TARGET ---
		{Key: "build_target", Env: envName("build_target"), FieldPath: "BuildTarget", Kind: KindTarget, Group: GroupTarget, Default: TargetRelease,
			Doc: []string{
				"Build target",
				"",
				"'debug'   : debug compile(-g).",
				"'release' : release compile(-O2). default",
				"'speed'   : Maximum optimization. experimental",
			}},

		// --- CODEGEN ---
		{Key: "enable_sse", Env: envName("enable_sse"), FieldPath: "EnableSSE", Kind: KindBool, Group: GroupCodegen, Default: true,
			Doc: []string{"SSE option."}},

		// --- PRECISION ---
		{Key: "use_double", Env: envName("use_double"), FieldPath: "UseDouble", Kind: KindBool, Group: GroupPrecision, Default: false,
			Doc: []string{
				"Specify floating point precision.",
				"",
				"0 : use float",
				"1 : use double",
			}},

		// --- LLVM ---
		{Key: "use_llvm", Env: envName("use_llvm"), FieldPath: "UseLLVM", Kind: KindBool, Group: GroupLLVM, Default: false,
			Doc: []string{"LLVM settings"}},
		{Key: "LLVM_CC", Aliases: []string{"llvm_cc"}, Env: envName("LLVM_CC"), FieldPath: "LLVMCC", Kind: KindString, Group: GroupLLVM, Default: "llvm-gcc",
			Doc: []string{"If you turn 'use_llvm' on, set path to llvm toolchain here."}},
		{Key: "LLVM_AR", Aliases: []string{"llvm_ar"}, Env: envName("LLVM_AR"), FieldPath: "LLVMAR", Kind: KindString, Group: GroupLLVM, Default: "llvm-ar"},
		{Key: "LLVM_LD", Aliases: []string{"llvm_ld"}, Env: envName("LLVM_LD"), FieldPath: "LLVMLD", Kind: KindString, Group: GroupLLVM, Default: "llvm-ld"},
		{Key: "LLVM_RANLIB", Aliases: []string{"llvm_ranlib"}, Env: envName("LLVM_RANLIB"), FieldPath: "LLVMRanlib", Kind: KindString, Group: GroupLLVM, Default: "llvm-ranlib"},
		{Key: "LLVM_LINK", Aliases: []string{"llvm_link"}, Env: envName("LLVM_LINK"), FieldPath: "LLVMLink", Kind: KindString, Group: GroupLLVM, Default: "llvm-ld"},
	}
}

func buildRegistry(entries []ConfigEntry) (*Registry, error) {
	r := &Registry{
		entries: entries,
		ByKey:   make(map[string]ConfigEntry),
		ByField: make(map[string]ConfigEntry),
		ByEnv:   make(map[string]ConfigEntry),
	}

	for _, e := range entries {
		if e.Key == "" || e.FieldPath == "" {
			return nil, fmt.Errorf("registry entry without key or field: %+v", e)
		}
		for _, k := range append([]string{e.Key}, e.Aliases...) {
			if _, dup := r.ByKey[k]; dup {
				return nil, fmt.Errorf("duplicate registry key: %s", k)
			}
			r.ByKey[k] = e
		}
		if _, dup := r.ByField[e.FieldPath]; dup {
			return nil, fmt.Errorf("duplicate registry field: %s", e.FieldPath)
		}
		r.ByField[e.FieldPath] = e
		if e.Env != "" {
			if _, dup := r.ByEnv[e.Env]; dup {
				return nil, fmt.Errorf("duplicate registry env: %s", e.Env)
			}
			r.ByEnv[e.Env] = e
		}
	}

	return r, nil
}

// Entries returns the registered keys in file order.
func (r *Registry) Entries() []ConfigEntry {
	out := make([]ConfigEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup resolves a canonical key or alias.
func (r *Registry) Lookup(key string) (ConfigEntry, bool) {
	e, ok := r.ByKey[key]
	return e, ok
}

// ValidateFieldCoverage uses reflection to ensure every field in BuildConfiguration is registered.
func (r *Registry) ValidateFieldCoverage() error {
	t := reflect.TypeOf(BuildConfiguration{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if _, ok := r.ByField[f.Name]; !ok {
			return fmt.Errorf("field %q is not registered in the config registry", f.Name)
		}
	}
	return nil
}

// ApplyDefaults applies registered default values to the given configuration.
// Returns an error if any default cannot be set (indicates registry misconfiguration).
func (r *Registry) ApplyDefaults(cfg *BuildConfiguration) error {
	v := reflect.ValueOf(cfg).Elem()
	for _, entry := range r.entries {
		if entry.Default == nil {
			continue
		}
		if err := setField(v, entry.FieldPath, entry.Default); err != nil {
			return fmt.Errorf("failed to set default for %s: %w", entry.FieldPath, err)
		}
	}
	return nil
}

// setField assigns value to the named field of v. Pointer fields are
// allocated; a pointer that is already set is left alone.
func setField(v reflect.Value, fieldPath string, value any) error {
	f := v.FieldByName(fieldPath)
	if !f.IsValid() {
		return fmt.Errorf("field %s not found", fieldPath)
	}

	val := reflect.ValueOf(value)
	if f.Kind() == reflect.Ptr {
		if !f.IsNil() {
			return nil
		}
		f.Set(reflect.New(f.Type().Elem()))
		f = f.Elem()
	}

	if f.Type() != val.Type() {
		if !val.Type().ConvertibleTo(f.Type()) {
			return fmt.Errorf("type mismatch for %s: expected %v, got %v", fieldPath, f.Type(), val.Type())
		}
		val = val.Convert(f.Type())
	}
	f.Set(val)
	return nil
}

// Value returns the value cfg holds for a canonical key or alias.
func (r *Registry) Value(cfg BuildConfiguration, key string) (any, bool) {
	e, ok := r.ByKey[key]
	if !ok {
		return nil, false
	}
	return getField(cfg, e.FieldPath), true
}

// getField reads the named field of a BuildConfiguration.
func getField(cfg BuildConfiguration, fieldPath string) any {
	return reflect.ValueOf(cfg).FieldByName(fieldPath).Interface()
}
