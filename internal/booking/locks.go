package booking

import (
	"context"
	"sync"
)

// slotLocks serializes bookings per key. Entries are reference-counted so
// the map does not grow with every (date, slot) pair ever requested.
type slotLocks struct {
	mu   sync.Mutex
	held map[string]*lockState
}

type lockState struct {
	sem  chan struct{}
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{held: make(map[string]*lockState)}
}

// acquire blocks until the lock for key is held or ctx is done. On success
// it returns a release function the caller must invoke exactly once.
func (l *slotLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	st, ok := l.held[key]
	if !ok {
		st = &lockState{sem: make(chan struct{}, 1)}
		l.held[key] = st
	}
	st.refs++
	l.mu.Unlock()

	select {
	case st.sem <- struct{}{}:
		return func() {
			<-st.sem
			l.release(key, st)
		}, nil
	case <-ctx.Done():
		l.release(key, st)
		return nil, ctx.Err()
	}
}

func (l *slotLocks) release(key string, st *lockState) {
	l.mu.Lock()
	st.refs--
	if st.refs == 0 {
		delete(l.held, key)
	}
	l.mu.Unlock()
}
