package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bucketbench/internal/app"
	"bucketbench/internal/config"
	"bucketbench/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bucketbench <endpoint> <bucket>",
	Short: "Benchmark aggregate GET throughput of an S3-compatible bucket",
	Long: `Reads back every object in a bucket with a fixed pool of concurrent workers,
splitting large objects into bounded byte-range reads and discarding the
payloads, to measure aggregate GET throughput.`,
	Args: cobra.ExactArgs(2),
	RunE: runBench,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yaml)")

	// Storage flags
	rootCmd.Flags().String("access-key", "", "Storage access key (or AWS_ACCESS_KEY_ID)")
	rootCmd.Flags().String("secret-key", "", "Storage secret key (or AWS_SECRET_ACCESS_KEY)")
	rootCmd.Flags().Bool("secure", false, "Use HTTPS")

	// Benchmark flags
	rootCmd.Flags().String("prefix", "", "Object prefix filter")
	rootCmd.Flags().Int("concurrency", 32, "Number of concurrent read workers")
	rootCmd.Flags().Uint64("chunk-size", 4*1024*1024*1024, "Maximum bytes per range read")
	rootCmd.Flags().String("report", "", "SQLite file to record per-task results")
	rootCmd.Flags().String("metrics-addr", "", "Prometheus metrics listen address (e.g. :8080)")
	rootCmd.Flags().String("log-level", "info", "Log level (debug/info/warn/error)")
	rootCmd.Flags().Bool("show-progress", true, "Show progress display")
}

func runBench(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(configFile, cmd.Flags(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	// Create application
	bench, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create benchmark: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	// Run benchmark
	result, err := bench.Run(ctx)

	// Close benchmark resources after the run completes or is cancelled
	if closeErr := bench.Close(); closeErr != nil {
		log.Error("Error closing benchmark", zap.Error(closeErr))
	}

	if err == nil && result.TasksFailed > 0 {
		err = fmt.Errorf("%d of %d read tasks failed", result.TasksFailed, result.TasksEnqueued)
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
