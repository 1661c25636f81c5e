package command

import "sync/atomic"

// DefaultQueueSize bounds the number of commands waiting for the control loop.
const DefaultQueueSize = 256

// Queue is a FIFO handoff between producers and the single control loop.
// Post never blocks, so it is safe to call from the keyboard hook.
type Queue struct {
	ch      chan Command
	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to size pending commands.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Command, size)}
}

// Post enqueues cmd. It reports false and counts a drop when the queue is full.
func (q *Queue) Post(cmd Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// C returns the receive side for the control loop.
func (q *Queue) C() <-chan Command {
	return q.ch
}

// Dropped returns how many commands were rejected because the queue was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
