// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package buildcfg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Marshal renders cfg in the key = value layout, one commented block per
// group. Unset CC is written commented out. Strings must be valid UTF-8 to
// round-trip.
func Marshal(cfg BuildConfiguration) []byte {
	registry, err := GetRegistry()
	if err != nil {
		panic(fmt.Sprintf("buildcfg: invalid registry: %v", err))
	}

	var buf bytes.Buffer
	entries := registry.Entries()
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].Group == entries[i].Group {
			j++
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		writeGroup(&buf, cfg, entries[i:j])
		i = j
	}
	return buf.Bytes()
}

func writeGroup(buf *bytes.Buffer, cfg BuildConfiguration, group []ConfigEntry) {
	width := 0
	for _, e := range group {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}
	for _, e := range group {
		for _, line := range e.Doc {
			if line == "" {
				buf.WriteString("#\n")
				continue
			}
			buf.WriteString("# " + line + "\n")
		}

		value := getField(cfg, e.FieldPath)
		if s, ok := value.(string); ok && s == "" && e.Default == nil {
			fmt.Fprintf(buf, "#%-*s = %s\n", width, e.Key, quoteValue(e.Example))
			continue
		}
		fmt.Fprintf(buf, "%-*s = %s\n", width, e.Key, formatValue(value))
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case BuildTarget:
		return quoteValue(string(v))
	case string:
		return quoteValue(v)
	default:
		return quoteValue(fmt.Sprint(v))
	}
}

// quoteValue uses a literal '...' string when possible and a basic "..."
// string with escapes otherwise.
func quoteValue(s string) string {
	if !strings.ContainsAny(s, "'") && !hasControl(s) {
		return "'" + s + "'"
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range strings.ToValidUTF8(s, "�") {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

// toFileConfig sets every key of cfg; an empty CC stays absent.
func toFileConfig(cfg BuildConfiguration) FileConfig {
	fc := FileConfig{
		BuildTarget: &cfg.BuildTarget,
		EnableSSE:   &cfg.EnableSSE,
		UseDouble:   &cfg.UseDouble,
		UseLLVM:     &cfg.UseLLVM,
		LLVMCC:      &cfg.LLVMCC,
		LLVMAR:      &cfg.LLVMAR,
		LLVMLD:      &cfg.LLVMLD,
		LLVMRanlib:  &cfg.LLVMRanlib,
		LLVMLink:    &cfg.LLVMLink,
	}
	if cfg.CompilerPath != "" {
		fc.CompilerPath = &cfg.CompilerPath
	}
	return fc
}

// Encode renders cfg in the given format. The kv and JSON output decode back
// to cfg exactly. YAML does too for printable strings; yaml.v3 block scalars
// do not preserve strings made only of line breaks.
func Encode(cfg BuildConfiguration, format Format) ([]byte, error) {
	switch format {
	case FormatKeyValue, "":
		return Marshal(cfg), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(toFileConfig(cfg)); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("close encoder: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
}
