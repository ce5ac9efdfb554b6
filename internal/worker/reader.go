package worker

import (
	"context"
	"io"

	"bucketbench/internal/queue"
	"bucketbench/internal/storage"
)

// SinkFactory returns the writer one read streams its payload into. The
// default factory discards everything; tests substitute counting sinks.
type SinkFactory func() io.Writer

// DiscardSink returns io.Discard for every read.
func DiscardSink() io.Writer {
	return io.Discard
}

// Reader executes a single ranged GET per task, streaming the body into the
// sink without buffering the object. Failures are returned as-is: retries,
// if any, are the storage client's internal concern.
type Reader struct {
	client storage.Client
	sink   SinkFactory
}

// NewReader creates a reader. A nil sink factory falls back to discarding.
func NewReader(client storage.Client, sink SinkFactory) *Reader {
	if sink == nil {
		sink = DiscardSink
	}
	return &Reader{
		client: client,
		sink:   sink,
	}
}

// Read performs the task's ranged GET and returns the bytes transferred.
func (r *Reader) Read(ctx context.Context, task queue.Task) (int64, error) {
	return r.client.ReadRange(ctx, task.Bucket, task.Key, task.Range.Start, task.Range.End, r.sink())
}
