package scan

import (
	"context"
	"sync"
)

// lease tracks one camera acquisition from request to release. done is
// closed once the acquisition has settled and any stream it produced has
// been closed.
type lease struct {
	once sync.Once
	done chan struct{}
}

func newLease() *lease {
	return &lease{done: make(chan struct{})}
}

// settle runs teardown once. Concurrent callers block until it has finished.
func (l *lease) settle(teardown func()) {
	l.once.Do(func() {
		defer close(l.done)
		if teardown != nil {
			teardown()
		}
	})
}

func (l *lease) wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
