package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRangesZeroSize(t *testing.T) {
	assert.Empty(t, SplitRanges(0, 1024))
}

func TestSplitRangesSingleChunk(t *testing.T) {
	ranges := SplitRanges(10, 1024)
	require.Len(t, ranges, 1)
	assert.Equal(t, ByteRange{Start: 0, End: 9}, ranges[0])
}

func TestSplitRangesExactMultiple(t *testing.T) {
	ranges := SplitRanges(2048, 1024)
	require.Len(t, ranges, 2)
	assert.Equal(t, ByteRange{Start: 0, End: 1023}, ranges[0])
	assert.Equal(t, ByteRange{Start: 1024, End: 2047}, ranges[1])
}

func TestSplitRangesTenMiBWithFourMiBChunks(t *testing.T) {
	ranges := SplitRanges(10*1024*1024, 4*1024*1024)
	require.Len(t, ranges, 3)
	assert.Equal(t, ByteRange{Start: 0, End: 4194303}, ranges[0])
	assert.Equal(t, ByteRange{Start: 4194304, End: 8388607}, ranges[1])
	assert.Equal(t, ByteRange{Start: 8388608, End: 10485759}, ranges[2])
}

func TestSplitRangesSingleByte(t *testing.T) {
	ranges := SplitRanges(1, 1)
	require.Len(t, ranges, 1)
	assert.Equal(t, ByteRange{Start: 0, End: 0}, ranges[0])
}

// Ranges must be contiguous, non-overlapping, each at most chunkSize long,
// and together cover exactly [0, size-1].
func TestSplitRangesCoverage(t *testing.T) {
	sizes := []uint64{1, 2, 99, 100, 101, 4096, 4097, 1<<20 + 7}
	chunks := []uint64{1, 7, 100, 4096, 1 << 20}

	for _, size := range sizes {
		for _, chunk := range chunks {
			ranges := SplitRanges(size, chunk)
			require.NotEmpty(t, ranges, "size=%d chunk=%d", size, chunk)

			var covered uint64
			next := uint64(0)
			for _, r := range ranges {
				assert.Equal(t, next, r.Start, "size=%d chunk=%d", size, chunk)
				assert.LessOrEqual(t, r.Start, r.End)
				assert.LessOrEqual(t, r.Len(), chunk)
				covered += r.Len()
				next = r.End + 1
			}
			assert.Equal(t, size, covered, "size=%d chunk=%d", size, chunk)
			assert.Equal(t, size-1, ranges[len(ranges)-1].End)
		}
	}
}

func TestByteRangeString(t *testing.T) {
	assert.Equal(t, "bytes=0-5", ByteRange{Start: 0, End: 5}.String())
	assert.Equal(t, "bytes=4194304-8388607", ByteRange{Start: 4194304, End: 8388607}.String())
}
