package queue

import (
	"context"
	"fmt"
	"slices"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// Options select the level range and daily quota for a user.
type Options struct {
	Range  progress.LevelRange
	PerDay int
}

// Result reports what EnsureDailyQueue did. Current is the queue after the
// call when Wrote is true.
type Result struct {
	Wrote     bool
	Current   []progress.CurrentQueueItem
	Reason    string
	Exhausted bool
}

// Reconciler persists the daily queue. Its writes are not transactional:
// two racing calls compute the same lessons from the same stored state and
// converge on the same queue.
type Reconciler struct {
	store  store.DocumentStore
	mirror *mirror.Publisher
	log    *logger.Logger
	offset int
}

func NewReconciler(st store.DocumentStore, pub *mirror.Publisher, log *logger.Logger, offsetHours int) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{store: st, mirror: pub, log: log.With("service", "queue"), offset: offsetHours}
}

// EnsureDailyQueue assigns today's lessons unless the quota is already
// covered, in which case it makes no write at all.
func (r *Reconciler) EnsureDailyQueue(ctx context.Context, userID string, opts Options, today string) (Result, error) {
	doc, exists, err := r.store.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load progress: %w", err)
	}

	d := Decide(doc, today, opts.Range, opts.PerDay, r.offset)
	if !d.ShouldWrite {
		r.log.Debug("daily queue already covered", "user_id", userID, "day", today)
		return Result{Reason: d.Reason}, nil
	}

	current := progress.MergeQueue(itemsOn(doc.Current, today), Stamp(d.Next, today))
	if d.Exhausted {
		r.log.Info("level range exhausted", "user_id", userID, "range", opts.Range.String(), "assigned", len(d.Next))
	}
	if exists && len(d.Next) == 0 && doc.CurrentAssignedDay == today && slices.Equal(current, doc.Current) {
		return Result{Current: current, Reason: d.Reason, Exhausted: d.Exhausted}, nil
	}

	patch := progress.Patch{Current: &current, CurrentAssignedDay: &today}
	if exists {
		err = r.store.Update(ctx, userID, patch)
	} else {
		err = r.store.Set(ctx, userID, patch.Apply(doc))
	}
	if err != nil {
		return Result{}, fmt.Errorf("write daily queue: %w", err)
	}

	r.log.Info("daily queue written", "user_id", userID, "day", today, "lessons", d.Next)
	r.mirror.Publish(ctx, userID, patch.Apply(doc))

	return Result{Wrote: true, Current: current, Reason: d.Reason, Exhausted: d.Exhausted}, nil
}

func itemsOn(items []progress.CurrentQueueItem, day string) []progress.CurrentQueueItem {
	var out []progress.CurrentQueueItem
	for _, it := range items {
		if daykey.DayPortion(it.AssignedDay) == day {
			out = append(out, it)
		}
	}
	return out
}
