package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bucketbench/internal/config"
	"bucketbench/internal/metrics"
	"bucketbench/internal/progress"
	"bucketbench/internal/queue"
	"bucketbench/internal/report"
	"bucketbench/internal/storage"
	"bucketbench/internal/worker"

	"go.uber.org/zap"
)

// RunResult aggregates the outcome of one benchmark run. Task counters are
// updated by the workers and collected after the pool-wide join.
type RunResult struct {
	TasksEnqueued  int64
	TasksSucceeded int64
	TasksFailed    int64
	BytesRead      int64
	Elapsed        time.Duration
	ListingFailed  bool
}

// Bench represents the benchmark application
type Bench struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  storage.Client
	metrics *metrics.Collector
	results report.Store
	queue   *queue.Queue
	workers *worker.Pool
}

// New creates a new benchmark instance
func New(cfg *config.Config, logger *zap.Logger) (*Bench, error) {
	client, err := storage.NewMinIOClient(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Secure:    cfg.Storage.Secure,
		MaxConns:  cfg.Bench.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	var results report.Store
	if cfg.Bench.Report != "" {
		results, err = report.NewSQLiteStore(cfg.Bench.Report)
		if err != nil {
			return nil, fmt.Errorf("failed to create report store: %w", err)
		}
	}

	return newBench(cfg, client, results, logger), nil
}

// newBench wires the components around an already-constructed client, so
// tests can substitute a fake backend.
func newBench(cfg *config.Config, client storage.Client, results report.Store, logger *zap.Logger) *Bench {
	metricsCollector := metrics.New()
	q := queue.New()

	reader := worker.NewReader(client, nil)
	pool := worker.NewPool(
		cfg.Bench.Concurrency,
		worker.Config{},
		q,
		reader,
		metricsCollector,
		results,
		logger,
	)

	return &Bench{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		metrics: metricsCollector,
		results: results,
		queue:   q,
		workers: pool,
	}
}

// Run executes the benchmark: workers start first, then the listing runs on
// the calling goroutine and feeds the queue. The run always terminates once
// enumeration ends and the queue drains, however many reads failed.
func (b *Bench) Run(ctx context.Context) (RunResult, error) {
	b.logger.Info("Starting benchmark",
		zap.String("endpoint", b.cfg.Storage.Endpoint),
		zap.String("bucket", b.cfg.Bench.Bucket),
		zap.String("prefix", b.cfg.Bench.Prefix),
		zap.Int("concurrency", b.cfg.Bench.Concurrency),
		zap.Uint64("chunk_size", b.cfg.Bench.ChunkSize),
	)

	if b.cfg.Bench.MetricsAddr != "" {
		go func() {
			if err := b.metrics.StartServer(b.cfg.Bench.MetricsAddr); err != nil {
				b.logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	var progressDisplay *progress.Display
	if b.cfg.Bench.ShowProgress && progress.IsTerminalSupported() {
		progressDisplay = progress.NewDisplay(b.metrics.GetProgressTracker(), 2*time.Second)
		progressDisplay.Start()
	}

	startTime := time.Now()

	var wg sync.WaitGroup
	b.workers.Start(ctx, &wg)

	lister := &ObjectLister{
		client:  b.client,
		metrics: b.metrics,
		logger:  b.logger,
	}
	enqueued, listErr := lister.ListAndEnqueue(ctx, b.cfg.Bench.Bucket, b.cfg.Bench.Prefix, b.cfg.Bench.ChunkSize, b.queue)

	// The lister closed the queue on every path, so the workers drain what
	// was enqueued and exit even when listing failed partway.
	wg.Wait()

	if progressDisplay != nil {
		progressDisplay.Stop()
	}

	summary := b.workers.Summary()
	result := RunResult{
		TasksEnqueued:  enqueued,
		TasksSucceeded: summary.Succeeded,
		TasksFailed:    summary.Failed,
		BytesRead:      summary.BytesRead,
		Elapsed:        time.Since(startTime),
		ListingFailed:  listErr != nil,
	}

	throughput := float64(0)
	if result.Elapsed > 0 {
		throughput = float64(result.BytesRead) / result.Elapsed.Seconds()
	}
	b.logger.Info("Benchmark completed",
		zap.Int64("tasks_enqueued", result.TasksEnqueued),
		zap.Int64("tasks_succeeded", result.TasksSucceeded),
		zap.Int64("tasks_failed", result.TasksFailed),
		zap.String("bytes_read", progress.FormatBytes(result.BytesRead)),
		zap.Duration("elapsed", result.Elapsed),
		zap.String("throughput", progress.FormatSpeed(throughput)),
		zap.Bool("listing_failed", result.ListingFailed),
	)

	if listErr != nil {
		return result, fmt.Errorf("enumeration ended early: %w", listErr)
	}
	return result, nil
}

// Close cleans up resources
func (b *Bench) Close() error {
	if b.results != nil {
		return b.results.Close()
	}
	return nil
}
