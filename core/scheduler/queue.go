package scheduler

import "sync"

// JobQueue is an unbounded FIFO queue of job ids. Submission never blocks
// and never rejects; the single worker drains in acceptance order.
type JobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ids    []int64
	closed bool
}

// NewJobQueue creates an empty queue
func NewJobQueue() *JobQueue {
	q := &JobQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a job id. Enqueue after Close is a no-op.
func (q *JobQueue) Enqueue(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.ids = append(q.ids, id)
	q.cond.Signal()
}

// Pop blocks until a job id is available or the queue is closed. The
// second return is false once the queue is closed and drained.
func (q *JobQueue) Pop() (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.ids) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.ids) == 0 {
		return 0, false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

// Len returns the number of queued ids
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

// Close wakes any blocked Pop. Already-queued ids are still drained.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
