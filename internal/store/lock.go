package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// TargetLocker serializes sync work on the same target. Within a process a
// mutex per target is used; when a lock directory is configured a file lock
// additionally guards against other processes sharing the same storage.
type TargetLocker struct {
	dir string

	mu    sync.Mutex
	locks map[string]*targetLock
}

type targetLock struct {
	ch chan struct{}
}

// NewTargetLocker creates a locker. An empty dir disables file locking.
func NewTargetLocker(dir string) *TargetLocker {
	return &TargetLocker{dir: dir, locks: make(map[string]*targetLock)}
}

// Lock blocks until the target is free or ctx is done. The returned function
// releases the lock.
func (l *TargetLocker) Lock(ctx context.Context, target string) (func(), error) {
	tl := l.get(target)

	select {
	case tl.ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if l.dir == "" {
		return func() { <-tl.ch }, nil
	}

	if err := os.MkdirAll(l.dir, 0750); err != nil {
		<-tl.ch
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	fl := flock.New(filepath.Join(l.dir, target+".lock"))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		<-tl.ch
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to lock target '%s': %w", target, err)
	}

	return func() {
		_ = fl.Unlock()
		<-tl.ch
	}, nil
}

func (l *TargetLocker) get(target string) *targetLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	tl, ok := l.locks[target]
	if !ok {
		tl = &targetLock{ch: make(chan struct{}, 1)}
		l.locks[target] = tl
	}
	return tl
}
