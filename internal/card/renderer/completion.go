package renderer

import (
	"context"
	"errors"
	"sync"

	"github.com/example/ridecard/internal/card/domain"
)

// ErrCompletionResolved is returned when a completion is resolved a second time
// or is already held by a running configuration.
var ErrCompletionResolved = errors.New("completion already resolved")

// Completion is the single-shot signal carrying the desired size back to the
// host. It is resolved at most once; hosts wait on it with their own deadline.
type Completion struct {
	mu       sync.Mutex
	claimed  bool
	resolved bool
	size     domain.Size
	done     chan struct{}
	notify   func(domain.Size)
}

// NewCompletion creates an unresolved completion. notify, when set, runs once
// on resolution.
func NewCompletion(notify func(domain.Size)) *Completion {
	return &Completion{done: make(chan struct{}), notify: notify}
}

// Resolve delivers size. Only the first call succeeds, and it fails while a
// configuration holds the completion.
func (c *Completion) Resolve(size domain.Size) error {
	c.mu.Lock()
	if c.claimed || c.resolved {
		c.mu.Unlock()
		return ErrCompletionResolved
	}
	c.claimed = true
	c.mu.Unlock()
	c.fulfil(size)
	return nil
}

// claim reserves the completion for one configuration.
func (c *Completion) claim() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.claimed || c.resolved {
		return ErrCompletionResolved
	}
	c.claimed = true
	return nil
}

// release hands a claimed but unresolved completion back.
func (c *Completion) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resolved {
		c.claimed = false
	}
}

// fulfil resolves a claimed completion.
func (c *Completion) fulfil(size domain.Size) {
	c.mu.Lock()
	c.resolved = true
	c.size = size
	close(c.done)
	c.mu.Unlock()

	if c.notify != nil {
		c.notify(size)
	}
}

// Done is closed once the completion has been resolved.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Resolved reports whether the completion carries a size.
func (c *Completion) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Wait blocks until the completion is resolved or ctx ends. A resolved
// completion always wins over an expired ctx.
func (c *Completion) Wait(ctx context.Context) (domain.Size, error) {
	select {
	case <-c.done:
		return c.resolvedSize(), nil
	default:
	}
	select {
	case <-c.done:
		return c.resolvedSize(), nil
	case <-ctx.Done():
		return domain.Size{}, ctx.Err()
	}
}

func (c *Completion) resolvedSize() domain.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
