package queue

import "sync"

// Queue is the thread-safe FIFO of read tasks shared between the enumeration
// producer and the worker pool.
//
// A single mutex guards both the task list and the closed flag so that
// emptiness and closure are always observed consistently: Drained never
// reports true while a pushed task is still in the list. Push is called only
// by the producer goroutine; TryPop and Drained are safe from any number of
// goroutines. No operation blocks waiting for work - waiting for more tasks
// is the caller's concern.
type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

// New creates an empty, open queue.
func New() *Queue {
	return &Queue{}
}

// Push appends a task to the tail. The producer must not call Push after
// Close.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// TryPop removes and returns the head task. The second return value is false
// when the queue is currently empty.
func (q *Queue) TryPop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return Task{}, false
	}

	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// Close marks that no further tasks will be pushed. Idempotent; the flag
// never reverts.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Closed reports whether the queue has been closed.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Drained reports whether the queue is both empty and closed, observed
// atomically under the queue lock. Once true, no task can ever appear again:
// the producer only closes after its final Push.
func (q *Queue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.tasks) == 0
}

// Len returns the number of tasks currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
