package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

func newTestCollapser(st *mockStore) (*Collapser, *mirror.Memory) {
	mem := mirror.NewMemory()
	return NewCollapser(st, mirror.NewPublisher(logger.Nop(), mem), logger.Nop(), 9), mem
}

func TestReconcileIfStale_CollapsesPastItems(t *testing.T) {
	doc := progress.Document{
		Completed: []progress.CompletionRecord{{LessonNumber: 1, CompletedAt: at(10).AddDate(0, 0, -1)}},
		Current: []progress.CurrentQueueItem{
			{LessonNumber: 2, AssignedDay: yesterday},
		},
		CurrentAssignedDay: yesterday,
	}
	st := newMockStore()
	st.put("u1", doc)
	c, mem := newTestCollapser(st)

	ok, err := c.ReconcileIfStale(context.Background(), "u1", doc, levelA, today, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, st.updates, "one mutation")

	got := st.docs["u1"]
	require.Len(t, got.Failed, 1)
	assert.Equal(t, 2, got.Failed[0].LessonNumber)
	assert.Equal(t, yesterday, got.Failed[0].AssignedDay)
	assert.Equal(t, time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC), got.Failed[0].AttemptedAt,
		"failure is stamped at the start of the assigned day, not now")

	assert.Equal(t, []progress.CurrentQueueItem{
		{LessonNumber: 3, AssignedDay: today},
		{LessonNumber: 4, AssignedDay: today},
	}, got.Current)
	assert.Equal(t, today, got.CurrentAssignedDay)
	assert.Len(t, got.Completed, 1, "completed untouched")

	mirrored, found, _ := mem.Load(context.Background(), "u1")
	require.True(t, found)
	assert.Equal(t, got.Current, mirrored.Current)
}

func TestReconcileIfStale_KeepsTodayItems(t *testing.T) {
	doc := progress.Document{
		Current: []progress.CurrentQueueItem{
			{LessonNumber: 7, AssignedDay: yesterday},
			{LessonNumber: 8, AssignedDay: today},
		},
		CurrentAssignedDay: yesterday,
	}
	st := newMockStore()
	st.put("u1", doc)
	c, _ := newTestCollapser(st)

	ok, err := c.ReconcileIfStale(context.Background(), "u1", doc, levelA, today, 2)
	require.NoError(t, err)
	require.True(t, ok)

	got := st.docs["u1"]
	assert.Equal(t, []progress.CurrentQueueItem{
		{LessonNumber: 8, AssignedDay: today},
		{LessonNumber: 9, AssignedDay: today},
	}, got.Current)
	require.Len(t, got.Failed, 1)
	assert.Equal(t, 7, got.Failed[0].LessonNumber)
}

func TestReconcileIfStale_MissingAssignmentDay(t *testing.T) {
	doc := progress.Document{
		Current: []progress.CurrentQueueItem{
			{LessonNumber: 5, AssignedDay: yesterday},
			{LessonNumber: 6, AssignedDay: today},
		},
	}
	st := newMockStore()
	st.put("u1", doc)
	c, _ := newTestCollapser(st)

	ok, err := c.ReconcileIfStale(context.Background(), "u1", doc, levelA, today, 2)
	require.NoError(t, err)
	require.True(t, ok, "oldest queued day stands in for the assignment day")

	got := st.docs["u1"]
	require.Len(t, got.Failed, 1)
	assert.Equal(t, 5, got.Failed[0].LessonNumber)
	assert.Equal(t, yesterday, got.Failed[0].AssignedDay)
	assert.Equal(t, []progress.CurrentQueueItem{
		{LessonNumber: 6, AssignedDay: today},
		{LessonNumber: 7, AssignedDay: today},
	}, got.Current)
	assert.Equal(t, today, got.CurrentAssignedDay)
}

func TestReconcileIfStale_NoOp(t *testing.T) {
	tests := []struct {
		name string
		doc  progress.Document
	}{
		{
			name: "assigned today",
			doc: progress.Document{
				Current:            []progress.CurrentQueueItem{{LessonNumber: 1, AssignedDay: yesterday}},
				CurrentAssignedDay: today,
			},
		},
		{
			name: "no assignment day and only today's items",
			doc: progress.Document{
				Current: []progress.CurrentQueueItem{{LessonNumber: 1, AssignedDay: today}},
			},
		},
		{
			name: "stale day but empty queue",
			doc: progress.Document{
				CurrentAssignedDay: yesterday,
			},
		},
		{
			name: "stale day but only today's items",
			doc: progress.Document{
				Current:            []progress.CurrentQueueItem{{LessonNumber: 1, AssignedDay: today}},
				CurrentAssignedDay: yesterday,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMockStore()
			c, _ := newTestCollapser(st)

			ok, err := c.ReconcileIfStale(context.Background(), "u1", tt.doc, levelA, today, 2)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Zero(t, st.gets+st.writes(), "no I/O")
		})
	}
}

func TestReconcileIfStale_CapsFailedHistory(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	failed := make([]progress.FailureRecord, progress.MaxHistory)
	for i := range failed {
		failed[i] = progress.FailureRecord{LessonNumber: 1000 + i, AttemptedAt: base.Add(time.Duration(i) * time.Hour)}
	}
	doc := progress.Document{
		Failed:             failed,
		Current:            []progress.CurrentQueueItem{{LessonNumber: 5, AssignedDay: yesterday}},
		CurrentAssignedDay: yesterday,
	}
	st := newMockStore()
	st.put("u1", doc)
	c, _ := newTestCollapser(st)

	_, err := c.ReconcileIfStale(context.Background(), "u1", doc, progress.LevelRange{Start: 1, End: 2000}, today, 2)
	require.NoError(t, err)

	got := st.docs["u1"].Failed
	require.Len(t, got, progress.MaxHistory)
	assert.Equal(t, 1001, got[0].LessonNumber, "oldest record dropped")
	assert.Equal(t, 5, got[len(got)-1].LessonNumber, "newest record last")
}

func TestReconcileIfStale_StoreError(t *testing.T) {
	boom := errors.New("unavailable")
	doc := progress.Document{
		Current:            []progress.CurrentQueueItem{{LessonNumber: 1, AssignedDay: yesterday}},
		CurrentAssignedDay: yesterday,
	}
	st := newMockStore()
	st.put("u1", doc)
	st.writeErr = boom
	c, _ := newTestCollapser(st)

	ok, err := c.ReconcileIfStale(context.Background(), "u1", doc, levelA, today, 2)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}
