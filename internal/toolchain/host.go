package toolchain

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Host describes the machine the build runs on.
type Host struct {
	Arch    string
	HasSSE2 bool
}

// DetectHost inspects the running CPU.
func DetectHost() Host {
	return Host{
		Arch:    runtime.GOARCH,
		HasSSE2: cpu.X86.HasSSE2,
	}
}

// IsX86 reports whether SSE flags make sense for the host at all.
func (h Host) IsX86() bool {
	return h.Arch == "amd64" || h.Arch == "386"
}
