package storage

import "fmt"

// ReadError reports a failed ranged GET, carrying the backend's error code
// and message for the run summary.
type ReadError struct {
	Key     string
	Range   string
	Code    string
	Message string
}

func (e *ReadError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("read %s %s: %s: %s", e.Key, e.Range, e.Code, e.Message)
	}
	return fmt.Sprintf("read %s %s: %s", e.Key, e.Range, e.Message)
}

// ListingError reports a failed listing page call.
type ListingError struct {
	Bucket  string
	Code    string
	Message string
}

func (e *ListingError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("list %s: %s: %s", e.Bucket, e.Code, e.Message)
	}
	return fmt.Sprintf("list %s: %s", e.Bucket, e.Message)
}
