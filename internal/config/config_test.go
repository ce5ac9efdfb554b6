package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("access-key", "", "")
	flags.String("secret-key", "", "")
	flags.Bool("secure", false, "")
	flags.String("prefix", "", "")
	flags.Int("concurrency", 32, "")
	flags.Uint64("chunk-size", 4*1024*1024*1024, "")
	flags.String("report", "", "")
	flags.String("metrics-addr", "", "")
	flags.String("log-level", "info", "")
	flags.Bool("show-progress", true, "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", testFlags(), "localhost:9000", "bench")
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "bench", cfg.Bench.Bucket)
	assert.Equal(t, 32, cfg.Bench.Concurrency)
	assert.Equal(t, uint64(4*1024*1024*1024), cfg.Bench.ChunkSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Bench.ShowProgress)
}

func TestLoadFlagOverrides(t *testing.T) {
	flags := testFlags()
	require.NoError(t, flags.Set("concurrency", "8"))
	require.NoError(t, flags.Set("chunk-size", "1048576"))
	require.NoError(t, flags.Set("prefix", "data/"))
	require.NoError(t, flags.Set("log-level", "debug"))

	cfg, err := Load("", flags, "localhost:9000", "bench")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Bench.Concurrency)
	assert.Equal(t, uint64(1048576), cfg.Bench.ChunkSize)
	assert.Equal(t, "data/", cfg.Bench.Prefix)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
storage:
  access_key: testkey
  secret_key: testsecret
  secure: true
bench:
  concurrency: 16
  chunk_size: 2097152
log_level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path, testFlags(), "localhost:9000", "bench")
	require.NoError(t, err)

	assert.Equal(t, "testkey", cfg.Storage.AccessKey)
	assert.True(t, cfg.Storage.Secure)
	assert.Equal(t, 16, cfg.Bench.Concurrency)
	assert.Equal(t, uint64(2097152), cfg.Bench.ChunkSize)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load("", testFlags(), "", "bench")
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = Load("", testFlags(), "localhost:9000", "")
	assert.ErrorContains(t, err, "bucket is required")

	flags := testFlags()
	require.NoError(t, flags.Set("concurrency", "0"))
	_, err = Load("", flags, "localhost:9000", "bench")
	assert.ErrorContains(t, err, "concurrency must be positive")

	flags = testFlags()
	require.NoError(t, flags.Set("chunk-size", "0"))
	_, err = Load("", flags, "localhost:9000", "bench")
	assert.ErrorContains(t, err, "chunk size must be positive")
}
