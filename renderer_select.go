package flare

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBackend = errors.New("unknown render backend")

// Backend identifies a concrete render target implementation.
type Backend string

const (
	BackendWGPU   Backend = "wgpu"
	BackendRaylib Backend = "raylib"
)

func Backends() []Backend {
	return []Backend{BackendWGPU, BackendRaylib}
}

// ParseBackend accepts a backend name case-insensitively. Empty selects wgpu.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(BackendWGPU), "webgpu":
		return BackendWGPU, nil
	case string(BackendRaylib), "ray":
		return BackendRaylib, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
