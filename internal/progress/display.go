package progress

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Display periodically renders the tracker state to the console.
type Display struct {
	tracker  *Tracker
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDisplay creates a new progress display
func NewDisplay(tracker *Tracker, interval time.Duration) *Display {
	return &Display{
		tracker:  tracker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start starts the progress display
func (d *Display) Start() {
	go d.displayLoop()
}

// Stop stops the display and prints the final state.
func (d *Display) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

func (d *Display) displayLoop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fmt.Println(d.renderLine(d.tracker.GetStatus()))
		case <-d.stopCh:
			d.finalDisplay()
			return
		}
	}
}

func (d *Display) renderLine(status Status) string {
	phase := "listing"
	if status.ListingDone {
		phase = "reading"
	}

	return fmt.Sprintf("[%s] objects=%d tasks=%d/%d failed=%d read=%s current=%s avg=%s",
		phase,
		status.DiscoveredObjects,
		status.CompletedTasks, status.EnqueuedTasks,
		status.FailedTasks,
		FormatBytes(status.ReadBytes),
		FormatSpeed(status.CurrentSpeed),
		FormatSpeed(status.AverageSpeed),
	)
}

func (d *Display) finalDisplay() {
	status := d.tracker.GetStatus()
	elapsed := time.Since(status.StartTime)

	lines := []string{
		"",
		"Benchmark complete",
		strings.Repeat("=", 50),
		fmt.Sprintf("Objects discovered: %d (%s)", status.DiscoveredObjects, FormatBytes(status.DiscoveredBytes)),
		fmt.Sprintf("Tasks: %d enqueued, %d completed, %d failed", status.EnqueuedTasks, status.CompletedTasks, status.FailedTasks),
		fmt.Sprintf("Bytes read: %s", FormatBytes(status.ReadBytes)),
		fmt.Sprintf("Elapsed: %s", FormatDuration(elapsed)),
		fmt.Sprintf("Average throughput: %s", FormatSpeed(status.AverageSpeed)),
		"",
	}

	fmt.Println(strings.Join(lines, "\n"))
}

// IsTerminalSupported checks if the terminal supports progress display
func IsTerminalSupported() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
