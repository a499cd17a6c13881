// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/ManuGH/buildcfg/internal/validate"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file encoding.
type Format string

const (
	// FormatKeyValue is the custom.py layout: key = value lines with # comments.
	FormatKeyValue Format = "kv"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// FormatForPath picks the decoder by file extension. Anything that is not
// YAML or JSON is read as key = value assignments.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatKeyValue
	}
}

// FileConfig holds the keys present in one file or environment. A nil field
// means the key was absent.
type FileConfig struct {
	CompilerPath *string      `yaml:"CC,omitempty"`
	BuildTarget  *BuildTarget `yaml:"build_target,omitempty"`
	EnableSSE    *bool        `yaml:"enable_sse,omitempty"`
	UseDouble    *bool        `yaml:"use_double,omitempty"`
	UseLLVM      *bool        `yaml:"use_llvm,omitempty"`
	LLVMCC       *string      `yaml:"LLVM_CC,omitempty"`
	LLVMAR       *string      `yaml:"LLVM_AR,omitempty"`
	LLVMLD       *string      `yaml:"LLVM_LD,omitempty"`
	LLVMRanlib   *string      `yaml:"LLVM_RANLIB,omitempty"`
	LLVMLink     *string      `yaml:"LLVM_LINK,omitempty"`
}

// Present lists the canonical keys set in fc, in registry order.
func (fc FileConfig) Present(r *Registry) []string {
	v := reflect.ValueOf(fc)
	var keys []string
	for _, e := range r.Entries() {
		if f := v.FieldByName(e.FieldPath); f.IsValid() && !f.IsNil() {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func (fc *FileConfig) set(entry ConfigEntry, value any) error {
	if err := setField(reflect.ValueOf(fc).Elem(), entry.FieldPath, value); err != nil {
		return fmt.Errorf("assign %s: %w", entry.Key, err)
	}
	return nil
}

// applyTo copies every present value onto cfg.
func (fc FileConfig) applyTo(cfg *BuildConfiguration) {
	src := reflect.ValueOf(fc)
	dst := reflect.ValueOf(cfg).Elem()
	for i := 0; i < src.NumField(); i++ {
		f := src.Field(i)
		if f.IsNil() {
			continue
		}
		dst.FieldByName(src.Type().Field(i).Name).Set(f.Elem())
	}
}

// decodeDocument parses raw bytes into a flat key -> value map.
func decodeDocument(data []byte, format Format) (map[string]any, error) {
	doc := map[string]any{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return map[string]any{}, nil
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
		}
		// Strict: Ensure no multiple documents or trailing content
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return nil, fmt.Errorf("%w: multiple documents or trailing content", ErrMalformedConfig)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: trailing content after JSON object", ErrMalformedConfig)
		}
	case FormatKeyValue, "":
		if err := toml.Unmarshal(data, &doc); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return nil, fmt.Errorf("%w: line %d column %d: %w", ErrMalformedConfig, row, col, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformedConfig, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// interpretDocument maps a decoded document onto a FileConfig. Unknown keys
// fail with ErrUnknownConfigField; values outside their domain are collected
// and reported together.
func interpretDocument(doc map[string]any, r *Registry) (FileConfig, error) {
	var fc FileConfig

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var unknown []string
	seen := make(map[string]string, len(keys))
	v := validate.New()

	for _, key := range keys {
		entry, ok := r.Lookup(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		raw := doc[key]
		if prev, dup := seen[entry.Key]; dup {
			v.AddError(entry.Key, fmt.Sprintf("set twice (as %q and %q)", prev, key), raw)
			continue
		}
		seen[entry.Key] = key

		value, err := coerceValue(entry.Kind, raw)
		if err != nil {
			v.AddError(entry.Key, err.Error(), raw)
			continue
		}
		if err := fc.set(entry, value); err != nil {
			return fc, err
		}
	}

	if len(unknown) > 0 {
		return fc, fmt.Errorf("%w: %s", ErrUnknownConfigField, strings.Join(unknown, ", "))
	}
	return fc, v.Err()
}

// coerceValue converts a decoded value to the Go type of kind.
func coerceValue(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a quoted string, got %v (%T)", raw, raw)
		}
		return s, nil
	case KindBool:
		return parseSwitch(raw)
	case KindTarget:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be one of %s, got %v (%T)", strings.Join(buildTargetNames(), ", "), raw, raw)
		}
		return ParseBuildTarget(s)
	default:
		return nil, fmt.Errorf("unsupported kind %v", kind)
	}
}

// parseSwitch accepts 1/0, true/false and the strings on/off, yes/no,
// true/false, 1/0 (case-insensitive).
func parseSwitch(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		return intSwitch(v)
	case int:
		return intSwitch(int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return false, fmt.Errorf("must be 0 or 1, got %s", v)
		}
		return intSwitch(n)
	case uint64:
		if v > 1 {
			return false, fmt.Errorf("must be 0 or 1, got %d", v)
		}
		return v == 1, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "on", "yes", "true":
			return true, nil
		case "0", "off", "no", "false":
			return false, nil
		}
		return false, fmt.Errorf("must be 0 or 1 (or on/off), got %q", v)
	default:
		return false, fmt.Errorf("must be 0 or 1, got %v (%T)", raw, raw)
	}
}

func intSwitch(v int64) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("must be 0 or 1, got %d", v)
	}
}
