package progress

import (
	"fmt"
	"sync"
	"time"
)

// Status represents a snapshot of the benchmark run
type Status struct {
	DiscoveredObjects int64 // objects seen by the listing so far
	DiscoveredBytes   int64 // bytes seen by the listing so far
	EnqueuedTasks     int64 // range tasks produced from the listing
	CompletedTasks    int64 // tasks read successfully
	FailedTasks       int64 // tasks that returned a read error
	ReadBytes         int64 // bytes transferred by successful reads
	ListingDone       bool  // enumeration has finished (totals are final)
	StartTime         time.Time
	LastUpdateTime    time.Time
	CurrentSpeed      float64 // bytes/second over the recent window
	AverageSpeed      float64 // bytes/second since start
}

// Tracker tracks benchmark progress. The totals are not known up front: they
// grow while the enumeration runs concurrently with the readers, so
// percentages are only meaningful once ListingDone is set.
type Tracker struct {
	mu           sync.RWMutex
	status       Status
	speedSamples []speedSample
	maxSamples   int
}

type speedSample struct {
	timestamp time.Time
	bytes     int64
}

// NewTracker creates a new progress tracker
func NewTracker() *Tracker {
	now := time.Now()
	return &Tracker{
		status: Status{
			StartTime:      now,
			LastUpdateTime: now,
		},
		speedSamples: make([]speedSample, 0, 60),
		maxSamples:   60,
	}
}

// AddDiscovered records objects and bytes seen by one listing page.
func (t *Tracker) AddDiscovered(objects, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.DiscoveredObjects += objects
	t.status.DiscoveredBytes += bytes
}

// AddEnqueued records range tasks pushed onto the work queue.
func (t *Tracker) AddEnqueued(tasks int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.EnqueuedTasks += tasks
}

// SetListingDone marks the discovered totals as final.
func (t *Tracker) SetListingDone() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.ListingDone = true
}

// AddRead records one successfully completed read task.
func (t *Tracker) AddRead(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.CompletedTasks++
	t.status.ReadBytes += bytes
	t.updateSpeed(bytes)
}

// AddFailed records one failed read task.
func (t *Tracker) AddFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.FailedTasks++
}

// updateSpeed updates the speed calculation (must be called with lock held)
func (t *Tracker) updateSpeed(bytes int64) {
	now := time.Now()

	t.speedSamples = append(t.speedSamples, speedSample{
		timestamp: now,
		bytes:     bytes,
	})
	if len(t.speedSamples) > t.maxSamples {
		t.speedSamples = t.speedSamples[1:]
	}

	t.calculateCurrentSpeed(now)

	elapsed := now.Sub(t.status.StartTime)
	if elapsed > 0 {
		t.status.AverageSpeed = float64(t.status.ReadBytes) / elapsed.Seconds()
	}

	t.status.LastUpdateTime = now
}

// calculateCurrentSpeed derives the speed from samples in the last 5 seconds.
func (t *Tracker) calculateCurrentSpeed(now time.Time) {
	if len(t.speedSamples) < 2 {
		t.status.CurrentSpeed = 0
		return
	}

	cutoff := now.Add(-5 * time.Second)
	var recentBytes int64
	var oldest *speedSample

	for i := len(t.speedSamples) - 1; i >= 0; i-- {
		sample := &t.speedSamples[i]
		if sample.timestamp.Before(cutoff) {
			break
		}
		recentBytes += sample.bytes
		oldest = sample
	}

	if oldest != nil {
		window := now.Sub(oldest.timestamp)
		if window > 0 {
			t.status.CurrentSpeed = float64(recentBytes) / window.Seconds()
		}
	}
}

// GetStatus returns the current status (thread-safe)
func (t *Tracker) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.status
}

// GetTaskProgressPercent returns completed+failed tasks as a percentage of
// enqueued tasks. Only final once the listing is done.
func (t *Tracker) GetTaskProgressPercent() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.status.EnqueuedTasks == 0 {
		return 0
	}

	return float64(t.status.CompletedTasks+t.status.FailedTasks) / float64(t.status.EnqueuedTasks) * 100
}

// FormatSpeed formats speed in human readable format
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.1f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/(1024*1024))
	} else {
		return fmt.Sprintf("%.1f GB/s", bytesPerSecond/(1024*1024*1024))
	}
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	} else if bytes < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	} else {
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	}
}

// FormatDuration formats duration in human readable format
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
