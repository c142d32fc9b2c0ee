package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swarm/internal/task"
)

func TestStoreTaskOrdering(t *testing.T) {
	s, err := NewStore(0)
	require.NoError(t, err)

	low := task.New("low priority", 9)
	high := task.New("high priority", 1)
	mid := task.New("mid priority", 5)
	s.PutTask(&low)
	s.PutTask(&high)
	s.PutTask(&mid)

	all := s.Tasks()
	require.Len(t, all, 3)
	assert.Equal(t, high.ID, all[0].ID)
	assert.Equal(t, mid.ID, all[1].ID)
	assert.Equal(t, low.ID, all[2].ID)
}

func TestStorePendingFiltersTerminal(t *testing.T) {
	s, err := NewStore(0)
	require.NoError(t, err)

	pending := task.New("still waiting", 5)
	done := task.New("already done", 5)
	done.Status = task.StatusComplete
	s.PutTask(&pending)
	s.PutTask(&done)

	got := s.Pending()
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}

func TestStoreHandoffRetention(t *testing.T) {
	s, err := NewStore(2)
	require.NoError(t, err)

	for _, id := range []string{"t1", "t2", "t3"} {
		s.PutHandoff(&task.Handoff{TaskID: id, Status: task.HandoffComplete, CreatedAt: time.Now()})
	}

	_, ok := s.Handoff("t1")
	assert.False(t, ok, "oldest handoff ages out at capacity")
	_, ok = s.Handoff("t2")
	assert.True(t, ok)
	_, ok = s.Handoff("t3")
	assert.True(t, ok)
}

func TestStoreTaskLookup(t *testing.T) {
	s, err := NewStore(0)
	require.NoError(t, err)

	t1 := task.New("lookup me", 5)
	s.PutTask(&t1)

	got, ok := s.Task(t1.ID)
	require.True(t, ok)
	assert.Equal(t, t1.ID, got.ID)

	_, ok = s.Task("missing")
	assert.False(t, ok)
}
