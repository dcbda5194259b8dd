package bridge

import "sync"

// Queue buffers outbound commands until the agent drains them. Commands
// for a disconnected agent accumulate up to a cap; beyond it the oldest
// are dropped.
type Queue struct {
	mu      sync.Mutex
	pending []Command
	cap     int
}

const defaultQueueCap = 256

// NewQueue creates a command queue.
func NewQueue() *Queue {
	return &Queue{cap: defaultQueueCap}
}

// Enqueue appends a command for the agent.
func (q *Queue) Enqueue(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, cmd)
	if len(q.pending) > q.cap {
		q.pending = q.pending[len(q.pending)-q.cap:]
	}
}

// Drain hands all pending commands to the agent and empties the queue.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len reports the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
