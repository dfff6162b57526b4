// Package exam records the result of each day's exam. At most one record
// is stored per exam day, even under concurrent submissions.
package exam

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// AppendResult reports whether a record was stored.
type AppendResult struct {
	Appended bool
	Record   progress.ExamRecord
}

type Appender struct {
	store  store.DocumentStore
	mirror *mirror.Publisher
	log    *logger.Logger
	now    func() time.Time
}

func NewAppender(st store.DocumentStore, pub *mirror.Publisher, log *logger.Logger) *Appender {
	if log == nil {
		log = logger.Nop()
	}
	return &Appender{store: st, mirror: pub, log: log.With("service", "exam"), now: time.Now}
}

// Append stores entry unless a record for the same exam day exists.
// A duplicate day is not an error.
func (a *Appender) Append(ctx context.Context, userID string, entry progress.ExamRecord) error {
	_, err := a.AppendWithResult(ctx, userID, entry)
	return err
}

// AppendWithResult is Append that also reports whether a write happened.
func (a *Appender) AppendWithResult(ctx context.Context, userID string, entry progress.ExamRecord) (AppendResult, error) {
	day := daykey.DayPortion(entry.ExamDay)
	if _, err := time.Parse(daykey.Layout, day); err != nil {
		return AppendResult{}, &ErrInvalidEntry{Err: fmt.Errorf("exam day %q: %w", entry.ExamDay, err)}
	}

	rec := entry
	rec.ExamDay = day
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = a.now().UTC()
	}

	var (
		res   AppendResult
		after progress.Document
	)
	err := a.store.Transact(ctx, userID, func(ctx context.Context, tx store.Tx) error {
		doc, exists, err := tx.Get(ctx)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		if doc.ExamOn(day) {
			return store.ErrAbort
		}

		records := append(slices.Clone(doc.ExamRecords), rec)
		patch := progress.Patch{ExamRecords: &records}
		if exists {
			err = tx.Update(ctx, patch)
		} else {
			err = tx.Set(ctx, patch.Apply(doc))
		}
		if err != nil {
			return err
		}

		after = patch.Apply(doc)
		res = AppendResult{Appended: true, Record: rec}
		return nil
	})
	if err != nil {
		return AppendResult{}, fmt.Errorf("append exam stats: %w", err)
	}

	if !res.Appended {
		a.log.Debug("exam already recorded", "user_id", userID, "day", day)
		return res, nil
	}
	a.log.Info("exam recorded", "user_id", userID, "day", day, "pair", rec.LessonPair)
	a.mirror.Publish(ctx, userID, after)
	return res, nil
}
