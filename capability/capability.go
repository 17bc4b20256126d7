// Copyright 2026 gpuprobe authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package capability exposes the startup-time feature registry.
package capability

import (
	internalcapability "github.com/born-ml/gpuprobe/internal/capability"
)

// Registry is an immutable capability table.
type Registry = internalcapability.Registry

// Class is one entry of the capability table.
type Class = internalcapability.Class

// Default returns the registry embedded at compile time.
func Default() (*Registry, error) {
	return internalcapability.Default()
}

// Load reads a capability table from a TOML file.
func Load(path string) (*Registry, error) {
	return internalcapability.Load(path)
}

// Parse builds a registry from TOML bytes.
func Parse(data []byte) (*Registry, error) {
	return internalcapability.Parse(data)
}
