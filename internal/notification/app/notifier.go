package app

import (
	"context"
	"sync"
	"time"

	"chat_gateway_service/internal/notification/domain"
	"chat_gateway_service/internal/notification/repository"
	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// AsyncNotifier bounded in-process queue in front of a Publisher.
// NotifyAsync never blocks: a full queue drops the job.
type AsyncNotifier struct {
	pub  repository.Publisher
	jobs chan domain.Job
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier create AsyncNotifier and start its publishing goroutine
func NewAsyncNotifier(pub repository.Publisher, buffer int) *AsyncNotifier {
	if buffer <= 0 {
		buffer = 1024
	}
	n := &AsyncNotifier{
		pub:  pub,
		jobs: make(chan domain.Job, buffer),
		done: make(chan struct{}),
	}
	go n.run()
	return n
}

// NotifyAsync enqueue a job for recipientID, fire-and-forget
func (n *AsyncNotifier) NotifyAsync(recipientID int64, content string, senderID int64) {
	job := domain.Job{RecipientID: recipientID, SenderID: senderID, Content: content, CreatedAt: time.Now().UTC()}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	select {
	case n.jobs <- job:
	default:
		logger.Log.Warn("notification queue full, drop job", zap.Int64("recipient_id", recipientID))
	}
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for job := range n.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := n.pub.Publish(ctx, job); err != nil {
			logger.Log.Error("publish notification failed", zap.Int64("recipient_id", job.RecipientID), zap.Error(err))
		}
		cancel()
	}
}

// Close stop accepting jobs, publish what is queued, then close the publisher
func (n *AsyncNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.jobs)
	n.mu.Unlock()

	<-n.done
	return n.pub.Close()
}
