package exam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(store.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(day string, a, b int) progress.ExamRecord {
	return progress.ExamRecord{
		ExamDay:    day,
		LessonPair: [2]int{a, b},
		Stats:      progress.ExamStats{Correct: 7, Total: 10, Score: 0.7},
	}
}

func TestAppend_CreatesDocument(t *testing.T) {
	s := openTestStore(t)
	mem := mirror.NewMemory()
	a := NewAppender(s, mirror.NewPublisher(logger.Nop(), mem), logger.Nop())
	ctx := context.Background()

	res, err := a.AppendWithResult(ctx, "u1", entry("2025-03-10", 1, 2))
	require.NoError(t, err)
	assert.True(t, res.Appended)
	assert.NotEmpty(t, res.Record.ID, "id assigned")
	assert.False(t, res.Record.RecordedAt.IsZero(), "recorded time assigned")

	doc, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, doc.ExamRecords, 1)
	assert.Equal(t, [2]int{1, 2}, doc.ExamRecords[0].LessonPair)

	mirrored, found, _ := mem.Load(ctx, "u1")
	require.True(t, found)
	assert.Len(t, mirrored.ExamRecords, 1)
}

func TestAppend_SameDayTwiceStoresOne(t *testing.T) {
	s := openTestStore(t)
	a := NewAppender(s, nil, logger.Nop())
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, "u1", entry("2025-03-10", 1, 2)))

	res, err := a.AppendWithResult(ctx, "u1", entry("2025-03-10T20:00:00+09:00", 3, 4))
	require.NoError(t, err, "a duplicate day is not an error")
	assert.False(t, res.Appended)

	doc, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, doc.ExamRecords, 1)
	assert.Equal(t, [2]int{1, 2}, doc.ExamRecords[0].LessonPair, "first entry kept")
}

func TestAppend_DifferentDays(t *testing.T) {
	s := openTestStore(t)
	a := NewAppender(s, nil, logger.Nop())
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, "u1", entry("2025-03-10", 1, 2)))
	require.NoError(t, a.Append(ctx, "u1", entry("2025-03-11", 3, 4)))

	doc, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, doc.ExamRecords, 2)
}

func TestAppend_KeepsOtherFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "u1", progress.Document{
		Current:            []progress.CurrentQueueItem{{LessonNumber: 9, AssignedDay: "2025-03-10"}},
		CurrentAssignedDay: "2025-03-10",
	}))

	a := NewAppender(s, nil, logger.Nop())
	require.NoError(t, a.Append(ctx, "u1", entry("2025-03-10", 7, 8)))

	doc, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []progress.CurrentQueueItem{{LessonNumber: 9, AssignedDay: "2025-03-10"}}, doc.Current)
	assert.Len(t, doc.ExamRecords, 1)
}

func TestAppend_ConcurrentSameDay(t *testing.T) {
	s := openTestStore(t)
	a := NewAppender(s, nil, logger.Nop())
	ctx := context.Background()

	const callers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		appended int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := a.AppendWithResult(ctx, "u1", entry("2025-03-10", i+1, i+2))
			if err != nil {
				t.Errorf("append %d: %v", i, err)
				return
			}
			if res.Appended {
				mu.Lock()
				appended++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, appended)
	doc, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, doc.ExamRecords, 1)
}

func TestAppend_InvalidDay(t *testing.T) {
	a := NewAppender(openTestStore(t), nil, logger.Nop())

	err := a.Append(context.Background(), "u1", entry("soon", 1, 2))
	var invErr *ErrInvalidEntry
	assert.True(t, errors.As(err, &invErr), "got %v", err)
}

type failingStore struct {
	store.DocumentStore
	err error
}

func (f failingStore) Transact(context.Context, string, func(context.Context, store.Tx) error) error {
	return f.err
}

func TestAppend_StoreError(t *testing.T) {
	boom := errors.New("unavailable")
	a := NewAppender(failingStore{err: boom}, nil, logger.Nop())

	err := a.Append(context.Background(), "u1", entry("2025-03-10", 1, 2))
	assert.ErrorIs(t, err, boom)
}
