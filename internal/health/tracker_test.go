package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerDefaultsHealthy(t *testing.T) {
	tracker := NewTracker()
	snap := tracker.Snapshot()

	assert.Equal(t, StatusHealthy, snap.Status)
	assert.Empty(t, snap.CurrentTask)
	assert.NotZero(t, snap.MemoryBytes)
	assert.False(t, snap.LastPing.IsZero())
}

func TestTrackerTaskLifecycle(t *testing.T) {
	tracker := NewTracker()

	tracker.SetTask("task-42")
	assert.Equal(t, "task-42", tracker.Snapshot().CurrentTask)

	tracker.ClearTask()
	assert.Empty(t, tracker.Snapshot().CurrentTask)
}

func TestTrackerUnhealthy(t *testing.T) {
	tracker := NewTracker()
	tracker.SetUnhealthy("llm endpoint unreachable")

	snap := tracker.Snapshot()
	assert.Equal(t, StatusUnhealthy, snap.Status)
	assert.Equal(t, "llm endpoint unreachable", snap.Reason)
}

func TestTrackerUptimeAndPing(t *testing.T) {
	tracker := NewTracker()
	before := tracker.Snapshot().LastPing

	time.Sleep(5 * time.Millisecond)
	tracker.Ping()

	snap := tracker.Snapshot()
	assert.True(t, snap.LastPing.After(before))
	assert.Greater(t, snap.Uptime, time.Duration(0))
}
