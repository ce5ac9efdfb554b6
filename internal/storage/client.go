package storage

import (
	"context"
	"io"
)

// Client defines the read-only interface the benchmark needs from an
// S3-compatible backend. Implementations must be safe for concurrent use:
// ReadRange is invoked from every worker goroutine at once.
type Client interface {
	// ListPage fetches one page of the bucket listing. token is the
	// continuation token returned by the previous page, empty for the first
	// page.
	ListPage(ctx context.Context, bucket, prefix, token string) (Page, error)

	// ReadRange streams the inclusive byte range [start, end] of an object
	// into sink and returns the number of bytes transferred.
	ReadRange(ctx context.Context, bucket, key string, start, end uint64, sink io.Writer) (int64, error)
}

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key  string
	Size uint64
}

// Page is one page of a bucket listing.
type Page struct {
	Objects   []ObjectInfo
	NextToken string
	HasMore   bool
}

// Config contains client configuration
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool

	// MaxConns caps open connections to the backend. Provision this together
	// with the worker count so every worker can hold a connection.
	MaxConns int
}
