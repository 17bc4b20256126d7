package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a deterministic Source for tests. It serves a fixed
// descriptor list and rejects allocations at or above failAt bytes.
type fakeSource struct {
	descs    []Descriptor
	failAt   uint64
	released bool

	allocCalls int
}

func (f *fakeSource) Adapters() ([]Descriptor, error) {
	if len(f.descs) == 0 {
		return nil, ErrNoDeviceFound
	}
	return f.descs, nil
}

func (f *fakeSource) Allocate(d Descriptor, size uint64) (*Allocation, error) {
	f.allocCalls++
	if f.failAt != 0 && size >= f.failAt {
		return nil, &AllocationError{Size: size, Err: errors.New("out of device memory")}
	}
	return &Allocation{size: size, device: d}, nil
}

func (f *fakeSource) Release() { f.released = true }

func twoDevices() []Descriptor {
	return []Descriptor{
		{Name: "Integrated", LowPower: true, Vendor: "intel", Backend: "Vulkan", VendorID: 0x8086, DeviceID: 0x9A49},
		{Name: "Discrete", LowPower: false, Vendor: "nvidia", Backend: "Vulkan", VendorID: 0x10DE, DeviceID: 0x2684},
	}
}

func TestEnumerate(t *testing.T) {
	p := NewWithSource(&fakeSource{descs: twoDevices()})

	devices, err := p.Enumerate()
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "Integrated", devices[0].Name)
	assert.True(t, devices[0].LowPower)
	assert.Equal(t, "Discrete", devices[1].Name)
	assert.False(t, devices[1].LowPower)
}

func TestEnumerateEmpty(t *testing.T) {
	p := NewWithSource(&fakeSource{})

	devices, err := p.Enumerate()
	assert.Nil(t, devices)
	assert.ErrorIs(t, err, ErrNoDeviceFound)
}

func TestAllocate(t *testing.T) {
	src := &fakeSource{descs: twoDevices()}
	p := NewWithSource(src)

	alloc, err := p.Allocate(src.descs[0], 4096)
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), alloc.Size())
	assert.Equal(t, "Integrated", alloc.Device().Name)
	alloc.Release()
}

func TestAllocateZeroBypassesSource(t *testing.T) {
	// Size 0 succeeds with an empty region without touching the
	// platform, so it cannot fail spuriously.
	src := &fakeSource{descs: twoDevices()}
	p := NewWithSource(src)

	alloc, err := p.Allocate(src.descs[0], 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), alloc.Size())
	assert.Equal(t, 0, src.allocCalls)
	alloc.Release()
}

func TestAllocateHugeFails(t *testing.T) {
	const huge = uint64(1) << 48

	src := &fakeSource{descs: twoDevices(), failAt: 1 << 30}
	p := NewWithSource(src)

	alloc, err := p.Allocate(src.descs[1], huge)
	assert.Nil(t, alloc)

	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, huge, allocErr.Size)
}

func TestAllocationReleaseIdempotent(t *testing.T) {
	calls := 0
	alloc := &Allocation{size: 16, release: func() { calls++ }}

	alloc.Release()
	alloc.Release()
	assert.Equal(t, 1, calls)
}

func TestProberRelease(t *testing.T) {
	src := &fakeSource{descs: twoDevices()}
	p := NewWithSource(src)

	p.Release()
	assert.True(t, src.released)
}

func TestAllocationErrorMessage(t *testing.T) {
	err := &AllocationError{Size: 1024, Err: errors.New("mapping refused")}
	assert.Contains(t, err.Error(), "1024")
	assert.Contains(t, err.Error(), "mapping refused")

	bare := &AllocationError{Size: 7}
	assert.Contains(t, bare.Error(), "7")
}
