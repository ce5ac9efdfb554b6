package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bucketbench/internal/metrics"
	"bucketbench/internal/queue"
	"bucketbench/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient serves ranges of zero bytes and fails configured keys.
type fakeClient struct {
	mu       sync.Mutex
	failKeys map[string]bool
	reads    int
}

func (f *fakeClient) ListPage(ctx context.Context, bucket, prefix, token string) (storage.Page, error) {
	return storage.Page{}, nil
}

func (f *fakeClient) ReadRange(ctx context.Context, bucket, key string, start, end uint64, sink io.Writer) (int64, error) {
	f.mu.Lock()
	f.reads++
	fail := f.failKeys[key]
	f.mu.Unlock()

	if fail {
		return 0, &storage.ReadError{Key: key, Code: "NoSuchKey", Message: "key does not exist"}
	}

	n, err := sink.Write(make([]byte, end-start+1))
	return int64(n), err
}

func (f *fakeClient) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func newTestPool(size int, q *queue.Queue, client storage.Client, sink SinkFactory) *Pool {
	cfg := Config{PollInterval: time.Millisecond}
	return NewPool(size, cfg, q, NewReader(client, sink), metrics.New(), nil, zap.NewNop())
}

func preload(q *queue.Queue, n int, size uint64) {
	for i := 0; i < n; i++ {
		q.Push(queue.Task{
			Bucket: "bench",
			Key:    fmt.Sprintf("obj-%d", i),
			Range:  queue.ByteRange{Start: 0, End: size - 1},
		})
	}
}

func TestPoolDrainsPreloadedQueue(t *testing.T) {
	for _, size := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("size-%d", size), func(t *testing.T) {
			const tasks = 50

			q := queue.New()
			preload(q, tasks, 100)
			q.Close()

			client := &fakeClient{}
			pool := newTestPool(size, q, client, nil)

			var wg sync.WaitGroup
			pool.Start(context.Background(), &wg)
			wg.Wait()

			summary := pool.Summary()
			assert.Equal(t, int64(tasks), summary.Attempted)
			assert.Equal(t, int64(tasks), summary.Succeeded)
			assert.Equal(t, int64(0), summary.Failed)
			assert.Equal(t, int64(tasks*100), summary.BytesRead)
			assert.Equal(t, tasks, client.readCount())
			assert.True(t, q.Drained())
		})
	}
}

// A worker that hits a read error keeps draining the rest of the queue.
func TestPoolContinuesAfterReadFailure(t *testing.T) {
	q := queue.New()
	preload(q, 10, 10)
	q.Close()

	client := &fakeClient{failKeys: map[string]bool{"obj-3": true, "obj-7": true}}
	pool := newTestPool(2, q, client, nil)

	var wg sync.WaitGroup
	pool.Start(context.Background(), &wg)
	wg.Wait()

	summary := pool.Summary()
	assert.Equal(t, int64(10), summary.Attempted)
	assert.Equal(t, int64(8), summary.Succeeded)
	assert.Equal(t, int64(2), summary.Failed)
	assert.Equal(t, int64(80), summary.BytesRead)
}

// Workers started against an empty open queue must wait for work and pick it
// up once pushed, then finish when the queue closes.
func TestPoolWaitsForWork(t *testing.T) {
	q := queue.New()
	client := &fakeClient{}
	pool := newTestPool(4, q, client, nil)

	var wg sync.WaitGroup
	pool.Start(context.Background(), &wg)

	// Give the workers a moment to reach their idle wait.
	time.Sleep(5 * time.Millisecond)

	preload(q, 20, 50)
	q.Close()
	wg.Wait()

	summary := pool.Summary()
	assert.Equal(t, int64(20), summary.Attempted)
	assert.Equal(t, int64(20), summary.Succeeded)
}

func TestPoolCountingSink(t *testing.T) {
	q := queue.New()
	preload(q, 3, 128)
	q.Close()

	var sinkBytes atomic.Int64
	sink := func() io.Writer {
		return writerFunc(func(p []byte) (int, error) {
			sinkBytes.Add(int64(len(p)))
			return len(p), nil
		})
	}

	pool := newTestPool(2, q, &fakeClient{}, sink)

	var wg sync.WaitGroup
	pool.Start(context.Background(), &wg)
	wg.Wait()

	assert.Equal(t, int64(3*128), sinkBytes.Load())
	assert.Equal(t, int64(3*128), pool.Summary().BytesRead)
}

func TestPoolStopsOnContextCancel(t *testing.T) {
	q := queue.New() // never closed

	ctx, cancel := context.WithCancel(context.Background())
	pool := newTestPool(2, q, &fakeClient{}, nil)

	var wg sync.WaitGroup
	pool.Start(ctx, &wg)
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop after context cancellation")
	}
}

func TestReaderDefaultsToDiscard(t *testing.T) {
	reader := NewReader(&fakeClient{}, nil)

	n, err := reader.Read(context.Background(), queue.Task{
		Bucket: "bench",
		Key:    "obj-0",
		Range:  queue.ByteRange{Start: 0, End: 99},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}
