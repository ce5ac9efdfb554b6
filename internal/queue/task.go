package queue

import "fmt"

// ByteRange is an inclusive byte interval within an object.
type ByteRange struct {
	Start uint64
	End   uint64
}

// Len returns the number of bytes covered by the range.
func (r ByteRange) Len() uint64 {
	return r.End - r.Start + 1
}

// String renders the range in HTTP Range header form, e.g. "bytes=0-5".
func (r ByteRange) String() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// Task represents a single ranged read of one object. Immutable once created.
type Task struct {
	Bucket string
	Key    string
	Range  ByteRange
}

// SplitRanges maps an object size to the ordered byte ranges to read, each
// covering at most chunkSize bytes. Ranges are contiguous, non-overlapping,
// and their union is exactly [0, size-1]. A zero-length object yields no
// ranges, so no GET is ever issued for it.
//
// chunkSize must be positive; configuration validation rejects zero before
// any splitting happens.
func SplitRanges(size, chunkSize uint64) []ByteRange {
	if size == 0 {
		return nil
	}

	ranges := make([]ByteRange, 0, (size+chunkSize-1)/chunkSize)
	for offset := uint64(0); offset < size; offset += chunkSize {
		end := offset + chunkSize - 1
		if end > size-1 {
			end = size - 1
		}
		ranges = append(ranges, ByteRange{Start: offset, End: end})
	}

	return ranges
}
