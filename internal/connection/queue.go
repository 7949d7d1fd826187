package connection

import "sync"

// sendQueue is a thread-safe FIFO of outbound frames for one connection.
// It starts small and doubles its capacity at 70% fill, up to a hard limit.
// Beyond the limit Push fails instead of growing, so one stalled peer cannot
// hold an unbounded backlog.
type sendQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []Frame
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	limit    int
	closed   bool
}

// initialQueueCapacity is the starting ring size, capped by the limit.
const initialQueueCapacity = 16

func newSendQueue(limit int) *sendQueue {
	if limit < 1 {
		limit = 1
	}
	capacity := initialQueueCapacity
	if capacity > limit {
		capacity = limit
	}
	q := &sendQueue{
		buf:      make([]Frame, capacity),
		capacity: capacity,
		limit:    limit,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a frame. Returns ErrClosed after Close and ErrQueueFull when
// the queue holds limit frames.
func (q *sendQueue) Push(f Frame) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.count >= q.limit {
		return ErrQueueFull
	}

	threshold := (q.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if q.count+1 >= threshold && q.capacity < q.limit {
		q.grow()
	}

	q.buf[q.tail] = f
	q.tail = (q.tail + 1) % q.capacity
	q.count++

	q.cond.Signal()
	return nil
}

// Pop removes the oldest frame, blocking until one is available.
// Returns false once the queue is closed; frames still queued at that point
// are discarded.
func (q *sendQueue) Pop() (Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return Frame{}, false
	}

	f := q.buf[q.head]
	q.buf[q.head] = Frame{} // Clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	return f, true
}

// Close wakes all waiters. After Close, Push returns ErrClosed.
func (q *sendQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued frames.
func (q *sendQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the current ring capacity.
func (q *sendQueue) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// grow doubles the capacity, never past limit. Must be called with lock held.
func (q *sendQueue) grow() {
	newCapacity := q.capacity * 2
	if newCapacity > q.limit {
		newCapacity = q.limit
	}
	newBuf := make([]Frame, newCapacity)

	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.capacity = newCapacity
}
