// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"debug", "release", "speed"}
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"debug", "debug", false},
		{"release", "release", false},
		{"speed", "speed", false},
		{"unknown", "fast", true},
		{"case differs", "Release", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.OneOf("build_target", tt.value, allowed)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_NotEmpty(t *testing.T) {
	v := New()
	v.NotEmpty("LLVM_AR", "   ")
	v.NotEmpty("LLVM_LD", "llvm-ld")

	if len(v.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(v.Errors()))
	}
	if v.Errors()[0].Field != "LLVM_AR" {
		t.Errorf("expected LLVM_AR, got %s", v.Errors()[0].Field)
	}
}

func TestValidator_Executable(t *testing.T) {
	lookPath := func(file string) (string, error) {
		if file == "llvm-ar" {
			return "/usr/bin/llvm-ar", nil
		}
		return "", errors.New("not in PATH")
	}

	v := New()
	if got := v.Executable("LLVM_AR", "llvm-ar", lookPath); got != "/usr/bin/llvm-ar" {
		t.Errorf("expected resolved path, got %q", got)
	}
	if got := v.Executable("LLVM_CC", "llvm-gcc", lookPath); got != "" {
		t.Errorf("expected empty path on failure, got %q", got)
	}
	if got := v.Executable("LLVM_LD", "", lookPath); got != "" {
		t.Errorf("expected empty path for empty name, got %q", got)
	}

	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(v.Errors()), v.Err())
	}
	if !strings.Contains(v.Err().Error(), "LLVM_CC") {
		t.Errorf("expected error to name LLVM_CC, got %v", v.Err())
	}
}

func TestValidationError_IsInvalidValue(t *testing.T) {
	v := New()
	v.AddError("build_target", "bad", "fast")
	v.AddError("enable_sse", "bad", 7)

	err := v.Err()
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected errors.Is(err, ErrInvalidValue), got %v", err)
	}

	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := ve.Fields()
	if len(fields) != 2 || fields[0] != "build_target" || fields[1] != "enable_sse" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined message, got %q", err.Error())
	}
}

func TestValidator_ErrNilWhenValid(t *testing.T) {
	v := New()
	v.OneOf("build_target", "release", []string{"release"})
	if err := v.Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestValidator_Custom(t *testing.T) {
	v := New()
	v.Custom("use_double", 3, func(value any) error {
		if n, ok := value.(int); ok && (n == 0 || n == 1) {
			return nil
		}
		return errors.New("must be 0 or 1")
	})
	if v.IsValid() {
		t.Fatal("expected custom validator to fail")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{" INFO ", LogLevelInfo, false},
		{"trace", LogLevelTrace, false},
		{"verbose", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLogLevel(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
