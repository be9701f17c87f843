// Package lock serializes mutations of one canvas.
//
// The layout engine reads the occupied area, then creates a router at the
// frontier. Two writers doing this at once would pick the same frontier, so
// every mutation of a resource holds that resource's lock. [Local] covers
// one process; [Redis] covers several processes sharing an appliance.
package lock

import (
	"context"
	"sync"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// Locker grants exclusive access to a resource until unlock is called.
// Lock blocks until the lock is free or ctx is done, in which case it
// returns a LOCK_TIMEOUT error.
type Locker interface {
	Lock(ctx context.Context, resource int) (unlock func(), err error)
}

// Local is an in-process Locker. The zero value is ready to use.
type Local struct {
	mu    sync.Mutex
	slots map[int]chan struct{}
}

// NewLocal returns an in-process Locker.
func NewLocal() *Local { return &Local{} }

func (l *Local) slot(resource int) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = make(map[int]chan struct{})
	}
	ch, ok := l.slots[resource]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[resource] = ch
	}
	return ch
}

// Lock implements Locker.
func (l *Local) Lock(ctx context.Context, resource int) (func(), error) {
	ch := l.slot(resource)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeLockTimeout, ctx.Err(), "resource %d", resource)
	}
}
