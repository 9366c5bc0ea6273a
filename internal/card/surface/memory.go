package surface

import (
	"context"
	"sync"

	"github.com/example/ridecard/internal/card/domain"
)

// MemorySurface keeps the last bound card in memory. Suitable for tests and
// hosts that render the binding themselves.
type MemorySurface struct {
	mu      sync.RWMutex
	binding domain.DisplayBinding
	bound   bool
}

// NewMemorySurface constructs an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

// Bind replaces the visible binding.
func (m *MemorySurface) Bind(_ context.Context, binding domain.DisplayBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binding = binding
	m.bound = true
	return nil
}

// Current returns the visible binding and whether anything was bound yet.
func (m *MemorySurface) Current() (domain.DisplayBinding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.binding, m.bound
}
