package app

import (
	"context"

	"bucketbench/internal/metrics"
	"bucketbench/internal/queue"
	"bucketbench/internal/storage"

	"go.uber.org/zap"
)

// ObjectLister is the enumeration producer: it pages through the bucket
// listing and feeds the work queue.
type ObjectLister struct {
	client  storage.Client
	metrics *metrics.Collector
	logger  *zap.Logger
}

// ListAndEnqueue pages through the bucket listing with a continuation token,
// splits every discovered object into range tasks and pushes them in listing
// order. On a page failure enumeration stops early without retrying; tasks
// from earlier pages stay enqueued. The queue is closed exactly once on
// every return path, after the final push, so workers can always drain and
// exit.
func (l *ObjectLister) ListAndEnqueue(ctx context.Context, bucket, prefix string, chunkSize uint64, q *queue.Queue) (int64, error) {
	defer q.Close()
	defer l.metrics.SetListingDone()

	var enqueued int64
	var totalObjects, totalBytes int64
	token := ""

	for {
		page, err := l.client.ListPage(ctx, bucket, prefix, token)
		if err != nil {
			l.logger.Error("Listing page failed, stopping enumeration",
				zap.String("bucket", bucket),
				zap.Int64("objects_so_far", totalObjects),
				zap.Error(err),
			)
			return enqueued, err
		}

		var pageBytes, pageTasks int64
		for _, obj := range page.Objects {
			ranges := queue.SplitRanges(obj.Size, chunkSize)
			for _, r := range ranges {
				q.Push(queue.Task{Bucket: bucket, Key: obj.Key, Range: r})
			}
			pageTasks += int64(len(ranges))
			pageBytes += int64(obj.Size)
			l.logger.Debug("Enqueued object",
				zap.String("key", obj.Key),
				zap.Uint64("size", obj.Size),
				zap.Int("tasks", len(ranges)),
			)
		}

		enqueued += pageTasks
		totalObjects += int64(len(page.Objects))
		totalBytes += pageBytes
		l.metrics.AddDiscovered(int64(len(page.Objects)), pageBytes)
		l.metrics.AddEnqueued(pageTasks)

		if !page.HasMore {
			break
		}
		token = page.NextToken

		if err := ctx.Err(); err != nil {
			return enqueued, err
		}
	}

	l.logger.Info("Finished listing objects",
		zap.Int64("total_objects", totalObjects),
		zap.Int64("total_size_bytes", totalBytes),
		zap.Int64("tasks_enqueued", enqueued),
	)
	return enqueued, nil
}
