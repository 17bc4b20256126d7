// Package report writes the probe's stdout lines. The format is what
// existing scripts grep for, so it stays plain: a count line, then one
// line per device.
package report

import (
	"fmt"
	"io"

	"github.com/born-ml/gpuprobe/internal/device"
)

// Count writes the initial device-count line.
func Count(w io.Writer, n int) {
	fmt.Fprintln(w, n)
}

// Device writes one line for d.
func Device(w io.Writer, d device.Descriptor) {
	fmt.Fprintf(w, "Found device %s isLowPower %v\n", d.Name, d.LowPower)
}

// DeviceWithCapability writes one line for d with a capability suffix.
func DeviceWithCapability(w io.Writer, d device.Descriptor, tag string, supported bool) {
	fmt.Fprintf(w, "Found device %s isLowPower %v supports %s %v\n", d.Name, d.LowPower, tag, supported)
}
