package device

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/born-ml/gpuprobe/internal/problog"
)

// webgpuSource reaches the platform's adapters through wgpu_native.
type webgpuSource struct {
	mu       sync.Mutex
	instance *wgpu.Instance
}

// newWebGPUSource creates the WebGPU instance backing enumeration and
// allocation. Returns an error if the native library is not present.
func newWebGPUSource() (s *webgpuSource, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("device: webgpu native library not available: %v", r)
		}
	}()

	instance, instErr := wgpu.CreateInstance(nil)
	if instErr != nil {
		return nil, fmt.Errorf("device: webgpu instance: %w", instErr)
	}
	return &webgpuSource{instance: instance}, nil
}

// adapterKey deduplicates adapters reached through more than one
// power-preference request.
type adapterKey struct {
	vendorID uint32
	deviceID uint32
	backend  wgpu.BackendType
}

// Adapters returns one Descriptor per distinct adapter. WebGPU has no
// enumeration call, so the source requests an adapter once per power
// preference and deduplicates: on dual-GPU machines this yields both
// the integrated and the discrete adapter, elsewhere a single entry.
func (s *webgpuSource) Adapters() (descs []Descriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			descs = nil
			err = fmt.Errorf("%w: native library failure: %v", ErrNoDeviceFound, r)
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := []wgpu.PowerPreference{
		wgpu.PowerPreferenceLowPower,
		wgpu.PowerPreferenceHighPerformance,
	}

	seen := make(map[adapterKey]bool, len(prefs))
	for _, pref := range prefs {
		adapter, adapterErr := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: pref,
		})
		if adapterErr != nil {
			continue
		}
		info, infoErr := adapter.GetInfo()
		adapter.Release()
		if infoErr != nil {
			continue
		}

		key := adapterKey{vendorID: info.VendorID, deviceID: info.DeviceID, backend: info.BackendType}
		if seen[key] {
			continue
		}
		seen[key] = true
		d := descriptorFromInfo(info)
		descs = append(descs, d)
		problog.Logger().Debug("adapter",
			zap.String("name", d.Name),
			zap.String("backend", d.Backend),
			zap.Bool("low_power", d.LowPower))
	}

	if len(descs) == 0 {
		return nil, ErrNoDeviceFound
	}
	return descs, nil
}

func descriptorFromInfo(info *wgpu.AdapterInfoGo) Descriptor {
	return Descriptor{
		Name:         info.Device,
		LowPower:     info.AdapterType == wgpu.AdapterTypeIntegratedGPU,
		Vendor:       info.Vendor,
		Architecture: info.Architecture,
		Backend:      backendName(info.BackendType),
		VendorID:     info.VendorID,
		DeviceID:     info.DeviceID,
	}
}

func backendName(bt wgpu.BackendType) string {
	switch bt {
	case wgpu.BackendTypeVulkan:
		return "Vulkan"
	case wgpu.BackendTypeMetal:
		return "Metal"
	case wgpu.BackendTypeD3D11:
		return "D3D11"
	case wgpu.BackendTypeD3D12:
		return "D3D12"
	case wgpu.BackendTypeOpenGL:
		return "OpenGL"
	case wgpu.BackendTypeOpenGLES:
		return "OpenGLES"
	case wgpu.BackendTypeWebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// Allocate creates one zero-initialized host-visible buffer on the
// adapter matching d. The buffer is created MappedAtCreation so the
// host mapping is verified before the allocation is handed out.
func (s *webgpuSource) Allocate(d Descriptor, size uint64) (alloc *Allocation, err error) {
	defer func() {
		if r := recover(); r != nil {
			alloc = nil
			err = &AllocationError{Size: size, Err: fmt.Errorf("native library failure: %v", r)}
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	pref := wgpu.PowerPreferenceHighPerformance
	if d.LowPower {
		pref = wgpu.PowerPreferenceLowPower
	}
	adapter, adapterErr := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: pref,
	})
	if adapterErr != nil {
		return nil, &AllocationError{Size: size, Err: adapterErr}
	}

	dev, devErr := adapter.RequestDevice(nil)
	if devErr != nil {
		adapter.Release()
		return nil, &AllocationError{Size: size, Err: devErr}
	}

	buffer := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if buffer == nil {
		dev.Release()
		adapter.Release()
		return nil, &AllocationError{Size: size, Err: fmt.Errorf("buffer creation rejected")}
	}

	// MappedAtCreation guarantees zeroed memory; the mapping check
	// confirms the region really is host visible.
	mappedPtr := buffer.GetMappedRange(0, size)
	if mappedPtr == nil {
		buffer.Release()
		dev.Release()
		adapter.Release()
		return nil, &AllocationError{Size: size, Err: fmt.Errorf("region not host mappable")}
	}
	buffer.Unmap()

	return &Allocation{
		size:   size,
		device: d,
		release: func() {
			buffer.Release()
			dev.Release()
			adapter.Release()
		},
	}, nil
}

// Release frees the WebGPU instance. The source must not be used
// afterwards.
func (s *webgpuSource) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}
