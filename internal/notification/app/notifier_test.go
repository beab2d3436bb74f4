package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chat_gateway_service/internal/notification/domain"
	"chat_gateway_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	jobs   []domain.Job
	block  chan struct{}
	fail   bool
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, job domain.Job) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) published() []domain.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Job{}, p.jobs...)
}

func TestAsyncNotifierPublishes(t *testing.T) {
	logger.SetNewNop()
	pub := &recordingPublisher{fail: true}
	n := NewAsyncNotifier(pub, 8)

	n.NotifyAsync(2, "hi", 1)
	n.NotifyAsync(3, "hi", 1)
	require.NoError(t, n.Close())

	jobs := pub.published()
	require.Len(t, jobs, 2)
	assert.Equal(t, int64(2), jobs[0].RecipientID)
	assert.Equal(t, int64(1), jobs[0].SenderID)
	assert.Equal(t, "hi", jobs[0].Content)
	assert.True(t, pub.closed)

	// close 之後直接忽略
	n.NotifyAsync(4, "late", 1)
	assert.NoError(t, n.Close())
}

func TestAsyncNotifierNeverBlocks(t *testing.T) {
	logger.SetNewNop()
	pub := &recordingPublisher{block: make(chan struct{})}
	n := NewAsyncNotifier(pub, 1)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			n.NotifyAsync(int64(i+1), "x", 1)
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyAsync blocked on a stalled publisher")
	}

	close(pub.block)
	require.NoError(t, n.Close())
	assert.Less(t, len(pub.published()), 100)
}
