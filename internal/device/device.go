// Package device implements GPU device discovery and the shared-memory
// smoke test for gpuprobe.
//
// A Prober takes its devices from a Source. The default Source is
// backed by WebGPU (github.com/go-webgpu/webgpu) for zero-CGO access
// to the platform's adapters; tests substitute a fake Source.
package device

import (
	"errors"
	"fmt"
)

// Descriptor identifies one compute device exposed by the platform.
// Descriptors are immutable snapshots: enumeration produces them and
// nothing mutates them afterwards.
type Descriptor struct {
	// Name is the platform's human-readable device name.
	Name string
	// LowPower reports the platform's hint that the device favors
	// energy efficiency over throughput (integrated GPUs, typically).
	LowPower bool
	// Vendor is the adapter vendor name, when the driver reports one.
	Vendor string
	// Architecture is the adapter architecture string, may be empty.
	Architecture string
	// Backend names the native API the adapter is reached through
	// (Vulkan, Metal, D3D12, ...).
	Backend string
	// VendorID and DeviceID are the PCI-style numeric identifiers.
	VendorID uint32
	DeviceID uint32
}

// ErrNoDeviceFound is returned by Enumerate when the platform exposes
// zero compute devices. It is fatal at the CLI boundary; the probe has
// nothing to do without a device.
var ErrNoDeviceFound = errors.New("device: no compute device found")

// AllocationError reports a shared-memory request the platform
// rejected. Size is the requested size in bytes.
type AllocationError struct {
	Size uint64
	Err  error
}

func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device: allocation of %d bytes failed: %v", e.Size, e.Err)
	}
	return fmt.Sprintf("device: allocation of %d bytes failed", e.Size)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// Allocation is a single zero-initialized region visible to both the
// host and the device. The caller owns it and releases it exactly
// once; Release on an already-released allocation is a no-op.
type Allocation struct {
	size     uint64
	device   Descriptor
	release  func()
	released bool
}

// Size returns the allocation's length in bytes.
func (a *Allocation) Size() uint64 { return a.size }

// Device returns the descriptor of the device backing the allocation.
func (a *Allocation) Device() Descriptor { return a.device }

// NewAllocation builds an Allocation over a Source's backing region.
// release frees the region; it may be nil when there is nothing to
// free.
func NewAllocation(d Descriptor, size uint64, release func()) *Allocation {
	return &Allocation{size: size, device: d, release: release}
}

// Release frees the backing region. Idempotent.
func (a *Allocation) Release() {
	if a.released {
		return
	}
	a.released = true
	if a.release != nil {
		a.release()
	}
}

// Source produces device snapshots and services allocation requests.
type Source interface {
	// Adapters returns the platform's devices, or ErrNoDeviceFound
	// when there are none.
	Adapters() ([]Descriptor, error)
	// Allocate requests a zero-initialized host-visible region of
	// size bytes on the device identified by d.
	Allocate(d Descriptor, size uint64) (*Allocation, error)
	// Release frees any platform handles held by the source.
	Release()
}

// Prober is the probe's single component: enumerate, then optionally
// allocate. Every call is synchronous and runs to completion.
type Prober struct {
	source Source
}

// New creates a Prober backed by the platform's WebGPU implementation.
// Returns an error if the native library is unavailable.
func New() (*Prober, error) {
	s, err := newWebGPUSource()
	if err != nil {
		return nil, err
	}
	return &Prober{source: s}, nil
}

// NewWithSource creates a Prober over an explicit Source.
func NewWithSource(s Source) *Prober {
	return &Prober{source: s}
}

// Enumerate returns a finite snapshot of the platform's devices.
// The snapshot is taken once; the platform is assumed not to add or
// remove devices mid-call.
func (p *Prober) Enumerate() ([]Descriptor, error) {
	descs, err := p.source.Adapters()
	if err != nil {
		return nil, err
	}
	if len(descs) == 0 {
		return nil, ErrNoDeviceFound
	}
	return descs, nil
}

// Allocate requests one zero-initialized shared region on d. A size
// of zero succeeds with an empty region and never reaches the
// platform, so the behavior is uniform across sources.
func (p *Prober) Allocate(d Descriptor, size uint64) (*Allocation, error) {
	if size == 0 {
		return &Allocation{device: d}, nil
	}
	return p.source.Allocate(d, size)
}

// Release frees the prober's platform handles. The prober must not be
// used afterwards.
func (p *Prober) Release() {
	p.source.Release()
}
