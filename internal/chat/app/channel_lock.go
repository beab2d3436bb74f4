package app

import (
	"context"
	"sync"
)

// channelLocks one ctx-aware mutex per channel, entries are dropped when nobody holds or waits
type channelLocks struct {
	mu    sync.Mutex
	locks map[int64]*channelLock
}

type channelLock struct {
	sem  chan struct{}
	refs int
}

func newChannelLocks() *channelLocks {
	return &channelLocks{locks: make(map[int64]*channelLock)}
}

// acquire block until channelID is free or ctx is done
func (l *channelLocks) acquire(ctx context.Context, channelID int64) (func(), error) {
	l.mu.Lock()
	cl, ok := l.locks[channelID]
	if !ok {
		cl = &channelLock{sem: make(chan struct{}, 1)}
		l.locks[channelID] = cl
	}
	cl.refs++
	l.mu.Unlock()

	select {
	case cl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-cl.sem
				l.unref(channelID, cl)
			})
		}, nil
	case <-ctx.Done():
		l.unref(channelID, cl)
		return nil, ctx.Err()
	}
}

func (l *channelLocks) unref(channelID int64, cl *channelLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl.refs--
	if cl.refs == 0 {
		delete(l.locks, channelID)
	}
}

func (l *channelLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
