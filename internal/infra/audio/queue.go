package audio

import (
	"context"
	"errors"
	"sync"
)

var errQueueClosed = errors.New("command queue closed")

// commandQueue is a bounded, closable queue of utterances. Pushes never block.
type commandQueue struct {
	mu     sync.Mutex
	items  chan []byte
	closed bool
}

func newCommandQueue(size int) *commandQueue {
	return &commandQueue{items: make(chan []byte, size)}
}

// push reports false when the queue is full or closed.
func (q *commandQueue) push(data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	select {
	case q.items <- data:
		return true
	default:
		return false
	}
}

func (q *commandQueue) pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-q.items:
		if !ok {
			return nil, errQueueClosed
		}
		return data, nil
	}
}

func (q *commandQueue) len() int {
	return len(q.items)
}

func (q *commandQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.items)
	}
}
