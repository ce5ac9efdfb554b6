package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Push(Task{Key: fmt.Sprintf("obj-%d", i)})
	}

	for i := 0; i < 5; i++ {
		task, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("obj-%d", i), task.Key)
	}

	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueueTryPopEmpty(t *testing.T) {
	q := New()
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := New()
	assert.False(t, q.Closed())

	q.Close()
	assert.True(t, q.Closed())

	q.Close()
	assert.True(t, q.Closed())
}

func TestQueueDrained(t *testing.T) {
	q := New()
	assert.False(t, q.Drained(), "open empty queue is not drained")

	q.Push(Task{Key: "a"})
	q.Close()
	assert.False(t, q.Drained(), "closed queue with a task is not drained")

	_, ok := q.TryPop()
	require.True(t, ok)
	assert.True(t, q.Drained())
}

func TestQueuePushCloseDrain(t *testing.T) {
	q := New()
	for i := 0; i < 100; i++ {
		q.Push(Task{Key: fmt.Sprintf("obj-%d", i)})
	}
	q.Close()

	seen := make(map[string]int)
	for {
		task, ok := q.TryPop()
		if !ok {
			break
		}
		seen[task.Key]++
	}

	assert.Len(t, seen, 100, "every pushed task popped")
	for key, count := range seen {
		assert.Equal(t, 1, count, "task %s popped exactly once", key)
	}
	assert.True(t, q.Closed())
	assert.True(t, q.Drained())
}

// One pusher-then-closer against many concurrent poppers: total successful
// pops must equal total pushes, with no duplicates and no losses.
func TestQueueConcurrentPoppers(t *testing.T) {
	const tasks = 2000
	const poppers = 8

	q := New()

	var mu sync.Mutex
	seen := make(map[string]int)

	var wg sync.WaitGroup
	for i := 0; i < poppers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := q.TryPop()
				if !ok {
					if q.Drained() {
						return
					}
					continue
				}
				mu.Lock()
				seen[task.Key]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < tasks; i++ {
		q.Push(Task{Key: fmt.Sprintf("obj-%d", i)})
	}
	q.Close()
	wg.Wait()

	require.Len(t, seen, tasks)
	for key, count := range seen {
		require.Equal(t, 1, count, "task %s delivered exactly once", key)
	}
}
