package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// ErrInvalidLesson is returned for non-positive lesson numbers.
var ErrInvalidLesson = errors.New("invalid lesson number")

// CompleteLesson records a passed quiz for lesson. The lesson leaves the
// queue and any earlier failure; an existing completion is replaced.
func (s *Service) CompleteLesson(ctx context.Context, userID string, lesson int, quiz json.RawMessage, at time.Time) error {
	if lesson < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidLesson, lesson)
	}
	if at.IsZero() {
		at = s.now()
	}

	_, err := s.record(ctx, userID, func(doc progress.Document) (progress.Document, bool) {
		rec := progress.CompletionRecord{
			LessonNumber: lesson,
			CompletedAt:  at.UTC(),
			AssignedDay:  assignedDay(doc, lesson, at, s.cfg.OffsetHours),
			Quiz:         quiz,
		}
		return progress.UpsertCompletion(doc, rec), true
	})
	if err != nil {
		return fmt.Errorf("complete lesson: %w", err)
	}
	s.log.Info("lesson completed", "user_id", userID, "lesson", lesson)
	return nil
}

// FailLesson records a failed attempt at lesson. It reports false, and
// writes nothing, when the lesson is already completed.
func (s *Service) FailLesson(ctx context.Context, userID string, lesson int, quiz json.RawMessage, at time.Time) (bool, error) {
	if lesson < 1 {
		return false, fmt.Errorf("%w: %d", ErrInvalidLesson, lesson)
	}
	if at.IsZero() {
		at = s.now()
	}

	recorded, err := s.record(ctx, userID, func(doc progress.Document) (progress.Document, bool) {
		rec := progress.FailureRecord{
			LessonNumber: lesson,
			AttemptedAt:  at.UTC(),
			AssignedDay:  assignedDay(doc, lesson, at, s.cfg.OffsetHours),
			Quiz:         quiz,
		}
		return progress.UpsertFailure(doc, rec)
	})
	if err != nil {
		return false, fmt.Errorf("fail lesson: %w", err)
	}
	if recorded {
		s.log.Info("lesson failed", "user_id", userID, "lesson", lesson)
	}
	return recorded, nil
}

// record applies edit to the stored document in one transaction and
// mirrors the result. edit returning false aborts without writing.
func (s *Service) record(ctx context.Context, userID string, edit func(progress.Document) (progress.Document, bool)) (bool, error) {
	var (
		after   progress.Document
		written bool
	)
	err := s.store.Transact(ctx, userID, func(ctx context.Context, tx store.Tx) error {
		doc, exists, err := tx.Get(ctx)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		next, ok := edit(doc)
		if !ok {
			return store.ErrAbort
		}

		if exists {
			err = tx.Update(ctx, progress.Patch{
				Completed: &next.Completed,
				Failed:    &next.Failed,
				Current:   &next.Current,
			})
		} else {
			err = tx.Set(ctx, next)
		}
		if err != nil {
			return err
		}
		after, written = next, true
		return nil
	})
	if err != nil {
		return false, err
	}
	if written {
		s.mirror.Publish(ctx, userID, after)
	}
	return written, nil
}

// assignedDay is the day lesson was queued for, or the day of at when it
// was never queued.
func assignedDay(doc progress.Document, lesson int, at time.Time, offsetHours int) string {
	for _, it := range doc.Current {
		if it.LessonNumber == lesson && it.AssignedDay != "" {
			return daykey.DayPortion(it.AssignedDay)
		}
	}
	return daykey.Key(at, offsetHours)
}
