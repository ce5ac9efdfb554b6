package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient implements the Client interface using minio-go
type MinIOClient struct {
	client *minio.Client
	core   *minio.Core
}

// NewMinIOClient creates a new MinIO client
func NewMinIOClient(cfg Config) (*MinIOClient, error) {
	// Clean and validate endpoint
	endpoint, err := cleanEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	}

	// Every worker holds one connection for the duration of a read, so the
	// transport must allow at least that many per host.
	if cfg.MaxConns > 0 {
		opts.Transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.MaxConns,
			MaxIdleConnsPerHost: cfg.MaxConns,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, err
	}

	return &MinIOClient{
		client: client,
		core:   &minio.Core{Client: client},
	}, nil
}

// cleanEndpoint removes protocol and path from endpoint URL to get host:port format
func cleanEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return "", fmt.Errorf("endpoint cannot be empty")
	}

	// If endpoint doesn't have protocol, add http:// for parsing
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		// Check if it's already in host:port format
		if strings.Contains(endpoint, "/") {
			return "", fmt.Errorf("endpoint contains path but no protocol")
		}
		return endpoint, nil
	}

	// Parse URL to extract host and port
	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	// Check if path is not empty (indicating a full URL with path)
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return "", fmt.Errorf("endpoint URL cannot have paths, only host:port is allowed (got path: %s)", parsedURL.Path)
	}

	// Return host:port format
	return parsedURL.Host, nil
}

// ListPage fetches one listing page via ListObjectsV2 with the given
// continuation token.
func (c *MinIOClient) ListPage(ctx context.Context, bucket, prefix, token string) (Page, error) {
	result, err := c.core.ListObjectsV2(bucket, prefix, "", token, "", 0)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		return Page{}, &ListingError{
			Bucket:  bucket,
			Code:    resp.Code,
			Message: errMessage(resp.Message, err),
		}
	}

	page := Page{
		Objects:   make([]ObjectInfo, 0, len(result.Contents)),
		NextToken: result.NextContinuationToken,
		HasMore:   result.IsTruncated,
	}
	for _, obj := range result.Contents {
		size := uint64(0)
		if obj.Size > 0 {
			size = uint64(obj.Size)
		}
		page.Objects = append(page.Objects, ObjectInfo{
			Key:  obj.Key,
			Size: size,
		})
	}

	return page, nil
}

// ReadRange issues one ranged GET and streams the body into sink. The body
// is never buffered beyond the copy buffer.
func (c *MinIOClient) ReadRange(ctx context.Context, bucket, key string, start, end uint64, sink io.Writer) (int64, error) {
	rng := fmt.Sprintf("bytes=%d-%d", start, end)

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(int64(start), int64(end)); err != nil {
		return 0, &ReadError{Key: key, Range: rng, Message: err.Error()}
	}

	obj, err := c.client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return 0, c.readError(key, rng, err)
	}
	defer obj.Close()

	n, err := io.Copy(sink, obj)
	if err != nil {
		return n, c.readError(key, rng, err)
	}

	return n, nil
}

func (c *MinIOClient) readError(key, rng string, err error) *ReadError {
	resp := minio.ToErrorResponse(err)
	return &ReadError{
		Key:     key,
		Range:   rng,
		Code:    resp.Code,
		Message: errMessage(resp.Message, err),
	}
}

func errMessage(msg string, err error) string {
	if msg != "" {
		return msg
	}
	return err.Error()
}
