// Package toolchain derives what an external build tool needs from a
// BuildConfiguration: compiler and archiver commands, CFLAGS, preprocessor
// defines and a generated config.h. It never invokes the compiler itself,
// except to ask each tool for its version (Probe).
package toolchain
