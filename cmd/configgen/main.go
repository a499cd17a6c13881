// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/buildcfg/internal/buildcfg"
	"gopkg.in/yaml.v3"
)

const (
	configDocPath         = "docs/CONFIGURATION.md"
	configExamplePath     = "buildcfg.example"
	configExampleYAMLPath = "buildcfg.example.yaml"
)

const (
	docBeginMarker = "<!-- BEGIN GENERATED CONFIG OPTIONS -->"
	docEndMarker   = "<!-- END GENERATED CONFIG OPTIONS -->"
)

func main() {
	check := flag.Bool("check", false, "fail if generated files are out of date instead of writing them")
	flag.Parse()

	root, err := os.Getwd()
	if err != nil {
		fail(err)
	}

	registry, err := buildcfg.GetRegistry()
	if err != nil {
		fail(fmt.Errorf("get registry: %w", err))
	}

	outputs, err := generate(root, registry.Entries())
	if err != nil {
		fail(err)
	}

	var stale []string
	for _, out := range outputs {
		path := filepath.Join(root, out.path)
		if *check {
			// #nosec G304 -- fixed repository paths
			current, err := os.ReadFile(path)
			if err != nil || !bytes.Equal(current, out.data) {
				stale = append(stale, out.path)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			fail(err)
		}
		if err := os.WriteFile(path, out.data, 0600); err != nil {
			fail(fmt.Errorf("write %s: %w", out.path, err))
		}
	}
	if len(stale) > 0 {
		fail(fmt.Errorf("out of date (run go run ./cmd/configgen): %s", strings.Join(stale, ", ")))
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "configgen: %v\n", err)
	os.Exit(1)
}

type output struct {
	path string
	data []byte
}

func generate(root string, entries []buildcfg.ConfigEntry) ([]output, error) {
	// #nosec G304 -- fixed repository path
	raw, err := os.ReadFile(filepath.Join(root, configDocPath))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config doc: %w", err)
	}
	doc := replaceGeneratedSection(string(raw), buildConfigDoc(entries))

	example := append([]byte("# Generated from internal/buildcfg/registry.go. Do not edit by hand.\n#\n"),
		buildcfg.Marshal(buildcfg.Defaults())...)

	exampleYAML, err := buildExampleYAML(entries)
	if err != nil {
		return nil, err
	}

	return []output{
		{configDocPath, []byte(doc)},
		{configExamplePath, example},
		{configExampleYAMLPath, exampleYAML},
	}, nil
}

func buildConfigDoc(entries []buildcfg.ConfigEntry) string {
	var b strings.Builder
	b.WriteString(docBeginMarker)
	b.WriteString("\n## Keys (Generated)\n\n")
	b.WriteString("This section is generated from `internal/buildcfg/registry.go`. Do not edit by hand.\n\n")
	b.WriteString("| Key | Aliases | Env | Type | Default | Description |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, entry := range entries {
		aliases := "-"
		if len(entry.Aliases) > 0 {
			aliases = "`" + strings.Join(entry.Aliases, "`, `") + "`"
		}
		def := "unset"
		if entry.Default != nil {
			def = fmt.Sprintf("`%s`", formatDefault(entry.Default))
		}
		b.WriteString(fmt.Sprintf("| `%s` | %s | `%s` | %s | %s | %s |\n",
			entry.Key, aliases, entry.Env, kindName(entry), def, describe(entry)))
	}
	b.WriteString("\n")
	b.WriteString(docEndMarker)
	return b.String()
}

func kindName(entry buildcfg.ConfigEntry) string {
	if entry.Kind == buildcfg.KindTarget {
		names := make([]string, 0, 3)
		for _, t := range buildcfg.BuildTargets() {
			names = append(names, string(t))
		}
		return "one of " + strings.Join(names, ", ")
	}
	return entry.Kind.String()
}

func describe(entry buildcfg.ConfigEntry) string {
	var parts []string
	for _, line := range entry.Doc {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, strings.ReplaceAll(line, "|", `\|`))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func formatDefault(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(v)
	}
}

func replaceGeneratedSection(content string, generated string) string {
	if content == "" {
		content = "# Build configuration\n\nThe build reads `custom.py` (key = value) or `*.yaml`. Every key may be\noverridden with its `BUILDCFG_*` environment variable.\n"
	}
	start := strings.Index(content, docBeginMarker)
	end := strings.Index(content, docEndMarker)
	if start == -1 || end == -1 || end < start {
		return strings.TrimRight(content, "\n") + "\n\n" + generated + "\n"
	}
	end += len(docEndMarker)
	return content[:start] + generated + content[end:]
}

func buildExampleYAML(entries []buildcfg.ConfigEntry) ([]byte, error) {
	var rootNode yaml.Node
	rootNode.Kind = yaml.MappingNode
	rootNode.HeadComment = "Generated from internal/buildcfg/registry.go. Do not edit by hand."

	// Unset keys stay out of the mapping; they are shown commented out above
	// the next key.
	var pending []string
	for _, entry := range entries {
		comment := pending
		pending = nil
		for _, line := range entry.Doc {
			if line != "" {
				comment = append(comment, line)
			}
		}

		var valNode *yaml.Node
		switch def := entry.Default.(type) {
		case nil:
			pending = append(comment, entry.Key+": "+entry.Example)
			continue
		case bool:
			valNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", def)}
		default:
			valNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(def)}
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key}
		keyNode.HeadComment = strings.Join(comment, "\n")
		rootNode.Content = append(rootNode.Content, keyNode, valNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&rootNode); err != nil {
		return nil, fmt.Errorf("encode example yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode example yaml: %w", err)
	}
	return buf.Bytes(), nil
}
