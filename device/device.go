// Copyright 2026 gpuprobe authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device exposes GPU device discovery and the shared-memory
// smoke test.
//
// Example:
//
//	prober, err := device.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer prober.Release()
//
//	devices, err := prober.Enumerate()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	alloc, err := prober.Allocate(devices[0], 4<<20)
package device

import (
	internaldevice "github.com/born-ml/gpuprobe/internal/device"
)

// Descriptor identifies one compute device exposed by the platform.
type Descriptor = internaldevice.Descriptor

// Allocation is a single zero-initialized host-and-device-visible
// memory region.
type Allocation = internaldevice.Allocation

// AllocationError reports a shared-memory request the platform
// rejected; it carries the requested size.
type AllocationError = internaldevice.AllocationError

// Prober enumerates devices and services allocation requests.
type Prober = internaldevice.Prober

// Source produces device snapshots; substitute one to probe a fake
// platform.
type Source = internaldevice.Source

// ErrNoDeviceFound is returned when the platform exposes zero compute
// devices.
var ErrNoDeviceFound = internaldevice.ErrNoDeviceFound

// New creates a Prober backed by the platform's WebGPU implementation.
func New() (*Prober, error) {
	return internaldevice.New()
}

// NewWithSource creates a Prober over an explicit Source.
func NewWithSource(s Source) *Prober {
	return internaldevice.NewWithSource(s)
}

// NewAllocation builds an Allocation over a Source's backing region.
func NewAllocation(d Descriptor, size uint64, release func()) *Allocation {
	return internaldevice.NewAllocation(d, size, release)
}

// IsAvailable checks if WebGPU is available on the current system.
//
// It attempts to initialize a WebGPU adapter to verify that a
// compatible GPU and drivers are present.
func IsAvailable() bool {
	return internaldevice.IsAvailable()
}
