package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

func TestNormalizeCanonical(t *testing.T) {
	raw := `{
		"completed": [{"lessonNumber": 1, "completedAt": "2025-03-10T01:00:00Z", "assignedDay": "2025-03-10"}],
		"failed": [{"lessonNumber": 2, "attemptedAt": "2025-03-10T02:00:00Z"}],
		"current": [{"lessonNumber": 3, "assignedDay": "2025-03-10"}],
		"currentAssignedDay": "2025-03-10",
		"examRecords": [{"examDay": "2025-03-10", "lessonNumberPair": [1, 2], "examStats": {"correct": 7, "total": 10, "score": 0.7}}]
	}`

	doc, err := Normalize([]byte(raw))
	require.NoError(t, err)

	require.Len(t, doc.Completed, 1)
	assert.Equal(t, time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), doc.Completed[0].CompletedAt)
	require.Len(t, doc.Failed, 1)
	assert.Equal(t, []progress.CurrentQueueItem{{LessonNumber: 3, AssignedDay: "2025-03-10"}}, doc.Current)
	require.Len(t, doc.ExamRecords, 1)
	assert.Equal(t, [2]int{1, 2}, doc.ExamRecords[0].LessonPair)
	assert.Equal(t, 7, doc.ExamRecords[0].Stats.Correct)
}

func TestNormalizeLegacyShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, doc progress.Document)
	}{
		{
			name: "non-array current becomes empty",
			raw:  `{"current": "12,13"}`,
			check: func(t *testing.T, doc progress.Document) {
				assert.Empty(t, doc.Current)
			},
		},
		{
			name: "object keyed by lesson number",
			raw:  `{"currentLessons": {"12": {"lessonDate": "2025-03-10T00:00:00+09:00"}, "13": {}}, "lessonDateAssigned": "2025-03-09"}`,
			check: func(t *testing.T, doc progress.Document) {
				assert.Equal(t, []progress.CurrentQueueItem{
					{LessonNumber: 12, AssignedDay: "2025-03-10"},
					{LessonNumber: 13, AssignedDay: "2025-03-09"},
				}, doc.Current)
			},
		},
		{
			name: "missing assignment day falls back to oldest queued day",
			raw:  `{"currentLessons": [{"lessonNo": 5, "lessonDate": "2025-03-09"}, {"lessonNo": 6, "lessonDate": "2025-03-10"}]}`,
			check: func(t *testing.T, doc progress.Document) {
				assert.Equal(t, "2025-03-09", doc.CurrentAssignedDay)
				assert.Len(t, doc.Current, 2)
			},
		},
		{
			name: "string lesson numbers and epoch millis",
			raw:  `{"completedLessons": [{"lessonNo": "7", "timestamp": 1741568400000}]}`,
			check: func(t *testing.T, doc progress.Document) {
				require.Len(t, doc.Completed, 1)
				assert.Equal(t, 7, doc.Completed[0].LessonNumber)
				assert.Equal(t, time.UnixMilli(1741568400000).UTC(), doc.Completed[0].CompletedAt)
			},
		},
		{
			name: "seconds object timestamps",
			raw:  `{"failedLessons": [{"lesson": 4, "failedAt": {"seconds": 1741568400, "nanoseconds": 0}}]}`,
			check: func(t *testing.T, doc progress.Document) {
				require.Len(t, doc.Failed, 1)
				assert.Equal(t, time.Unix(1741568400, 0).UTC(), doc.Failed[0].AttemptedAt)
			},
		},
		{
			name: "bare numbers in current",
			raw:  `{"current": [5, "6", 0, -1, "x"], "currentAssignedDay": "2025-03-10"}`,
			check: func(t *testing.T, doc progress.Document) {
				assert.Equal(t, []progress.CurrentQueueItem{
					{LessonNumber: 5, AssignedDay: "2025-03-10"},
					{LessonNumber: 6, AssignedDay: "2025-03-10"},
				}, doc.Current)
			},
		},
		{
			name: "completion wins over failure and queue",
			raw: `{
				"completed": [{"lessonNumber": 1}, {"lessonNumber": 1, "assignedDay": "2025-03-11"}],
				"failed": [{"lessonNumber": 1}, {"lessonNumber": 2}],
				"current": [{"lessonNumber": 1}, {"lessonNumber": 2}, {"lessonNumber": 3}]
			}`,
			check: func(t *testing.T, doc progress.Document) {
				require.Len(t, doc.Completed, 1)
				assert.Equal(t, "2025-03-11", doc.Completed[0].AssignedDay, "last duplicate wins")
				require.Len(t, doc.Failed, 1)
				assert.Equal(t, 2, doc.Failed[0].LessonNumber)
				require.Len(t, doc.Current, 1)
				assert.Equal(t, 3, doc.Current[0].LessonNumber)
			},
		},
		{
			name: "legacy exam stats list",
			raw:  `{"examStats": [{"date": "2025-03-10", "lessonPair": ["1", 2], "correct": 3, "total": 4}, {"lessonPair": [3, 4]}]}`,
			check: func(t *testing.T, doc progress.Document) {
				require.Len(t, doc.ExamRecords, 1, "records without a day are dropped")
				assert.Equal(t, [2]int{1, 2}, doc.ExamRecords[0].LessonPair)
				assert.Equal(t, 3, doc.ExamRecords[0].Stats.Correct)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Normalize([]byte(tt.raw))
			require.NoError(t, err)
			tt.check(t, doc)
		})
	}
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"x"`, `{bad`, ``} {
		_, err := Normalize([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedDocument, "input %q", raw)
	}
}
