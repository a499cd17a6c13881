// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package buildcfg

import (
	"reflect"
)

// ChangeSummary describes the result of comparing two BuildConfigurations.
type ChangeSummary struct {
	ChangedKeys     []string // Keys whose value differs, in registry order
	InertKeys       []string // Changed keys that do not affect the build
	RebuildRequired bool     // True if any changed key affects the build
}

// Changed reports whether any key differs.
func (s ChangeSummary) Changed() bool {
	return len(s.ChangedKeys) > 0
}

// Diff compares two configurations and returns a summary of changes.
// LLVM keys are inert while both sides have use_llvm off; CC is inert while
// both sides have use_llvm on.
func Diff(old, next BuildConfiguration) (ChangeSummary, error) {
	registry, err := GetRegistry()
	if err != nil {
		return ChangeSummary{}, err
	}

	summary := ChangeSummary{}
	oldVal := reflect.ValueOf(old)
	nextVal := reflect.ValueOf(next)

	for _, entry := range registry.Entries() {
		ov := oldVal.FieldByName(entry.FieldPath).Interface()
		nv := nextVal.FieldByName(entry.FieldPath).Interface()
		if reflect.DeepEqual(ov, nv) {
			continue
		}
		summary.ChangedKeys = append(summary.ChangedKeys, entry.Key)
		if isInert(entry, old, next) {
			summary.InertKeys = append(summary.InertKeys, entry.Key)
			continue
		}
		summary.RebuildRequired = true
	}

	return summary, nil
}

func isInert(entry ConfigEntry, old, next BuildConfiguration) bool {
	switch {
	case entry.Group == GroupLLVM && entry.Key != "use_llvm":
		return !old.UseLLVM && !next.UseLLVM
	case entry.Key == "CC":
		return old.UseLLVM && next.UseLLVM
	default:
		return false
	}
}
