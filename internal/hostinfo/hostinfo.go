// Package hostinfo identifies the machine the probe runs on.
package hostinfo

import "runtime"

// Info describes the host operating system.
type Info struct {
	OS     string
	Arch   string
	Kernel string
}

// Current returns the host's identification. Kernel is empty on
// platforms without a uname-style query.
func Current() Info {
	return Info{
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
		Kernel: kernelVersion(),
	}
}
