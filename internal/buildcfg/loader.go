// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"fmt"
	"os"
	"path/filepath"

	buildlog "github.com/ManuGH/buildcfg/internal/log"
	"github.com/ManuGH/buildcfg/internal/validate"
	"github.com/rs/zerolog"
)

// Loader handles configuration loading with precedence. A Loader holds no
// per-load state and may be used from several goroutines.
type Loader struct {
	configPath string
	useEnv     bool
	lookPath   validate.LookPathFunc
	logger     zerolog.Logger
}

// LoadResult is the outcome of one successful load.
type LoadResult struct {
	Config BuildConfiguration
	// EnvKeys lists the BUILDCFG_* variables that overrode a value, in
	// registry order.
	EnvKeys []string
}

// Option customizes a Loader.
type Option func(*Loader)

// WithEnvOverrides lets BUILDCFG_* variables override file values.
func WithEnvOverrides() Option {
	return func(l *Loader) { l.useEnv = true }
}

// WithLookPath replaces exec.LookPath for LLVM toolchain resolution.
func WithLookPath(fn validate.LookPathFunc) Option {
	return func(l *Loader) { l.lookPath = fn }
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a new configuration loader. An empty configPath loads
// defaults (and env overrides, if enabled) only.
func NewLoader(configPath string, opts ...Option) *Loader {
	l := &Loader{
		configPath: configPath,
		logger:     buildlog.WithComponent("buildcfg"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the configured file path.
func (l *Loader) Path() string {
	return l.configPath
}

// Load reads the configuration file and returns the validated configuration.
// It does not touch the environment.
func Load(path string) (BuildConfiguration, error) {
	return NewLoader(path).Load()
}

// Load loads configuration with precedence: ENV > File > Defaults.
func (l *Loader) Load() (BuildConfiguration, error) {
	res, err := l.LoadDetailed()
	return res.Config, err
}

// LoadDetailed is Load that also reports which environment variables were
// applied. On error the result is empty.
// Order: Defaults -> Parse File (strict) -> Apply Env -> Validate -> Resolve LLVM.
func (l *Loader) LoadDetailed() (LoadResult, error) {
	registry, err := GetRegistry()
	if err != nil {
		return LoadResult{}, fmt.Errorf("get registry: %w", err)
	}

	// 1. Defaults
	cfg := BuildConfiguration{}
	if err := registry.ApplyDefaults(&cfg); err != nil {
		return LoadResult{}, fmt.Errorf("apply defaults: %w", err)
	}

	// 2. File
	if l.configPath != "" {
		fileCfg, err := loadFile(l.configPath, registry)
		if err != nil {
			return LoadResult{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
		l.logSources(fileCfg, registry, "file")
		fileCfg.applyTo(&cfg)
	}

	// 3. Environment
	var envKeys []string
	if l.useEnv {
		envCfg, keys, err := l.readEnvConfig(registry)
		if err != nil {
			return LoadResult{}, fmt.Errorf("environment overrides: %w", err)
		}
		envCfg.applyTo(&cfg)
		envKeys = keys
	}

	// 4. Domain validation
	if err := Validate(cfg); err != nil {
		return LoadResult{}, fmt.Errorf("config validation failed: %w", err)
	}

	// 5. Host resolution (inert unless use_llvm is on)
	if _, err := ResolveLLVM(cfg, l.lookPath); err != nil {
		return LoadResult{}, fmt.Errorf("llvm toolchain: %w", err)
	}

	l.logger.Debug().
		Str("event", "config.loaded").
		Str("path", l.configPath).
		Str(buildlog.FieldTarget, string(cfg.BuildTarget)).
		Str(buildlog.FieldToolchain, cfg.ToolchainName()).
		Msg("build configuration loaded")

	return LoadResult{Config: cfg, EnvKeys: envKeys}, nil
}

// loadFile reads and strictly decodes path. Unknown keys cause a fatal error
// to prevent misconfiguration.
func loadFile(path string, r *Registry) (FileConfig, error) {
	path = filepath.Clean(path)

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read file: %w", err)
	}
	return parseFileConfig(data, FormatForPath(path), r)
}

func (l *Loader) logSources(fc FileConfig, r *Registry, source string) {
	for _, key := range fc.Present(r) {
		l.logger.Debug().
			Str("key", key).
			Str("source", source).
			Msg("using configured value")
	}
}

func parseFileConfig(data []byte, format Format, r *Registry) (FileConfig, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return FileConfig{}, err
	}
	return interpretDocument(doc, r)
}

// Parse decodes data without touching the filesystem or the environment:
// defaults, then the present keys, then domain validation. LLVM binaries are
// not resolved; call ResolveLLVM for that.
func Parse(data []byte, format Format) (BuildConfiguration, error) {
	registry, err := GetRegistry()
	if err != nil {
		return BuildConfiguration{}, fmt.Errorf("get registry: %w", err)
	}
	cfg := BuildConfiguration{}
	if err := registry.ApplyDefaults(&cfg); err != nil {
		return BuildConfiguration{}, fmt.Errorf("apply defaults: %w", err)
	}
	fc, err := parseFileConfig(data, format, registry)
	if err != nil {
		return BuildConfiguration{}, err
	}
	fc.applyTo(&cfg)
	if err := Validate(cfg); err != nil {
		return BuildConfiguration{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
