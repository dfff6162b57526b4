package queue

import (
	"context"
	"fmt"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/logger"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/mirror"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/store"
)

// Collapser turns a queue left over from an earlier day into failures and
// assigns a fresh queue for today.
type Collapser struct {
	store  store.DocumentStore
	mirror *mirror.Publisher
	log    *logger.Logger
	offset int
}

func NewCollapser(st store.DocumentStore, pub *mirror.Publisher, log *logger.Logger, offsetHours int) *Collapser {
	if log == nil {
		log = logger.Nop()
	}
	return &Collapser{store: st, mirror: pub, log: log.With("service", "collapser"), offset: offsetHours}
}

// ReconcileIfStale collapses doc's queue when it was assigned before today
// and still holds items from a past day. A document without an assignment
// day counts as assigned on its oldest queued day. It returns false,
// without any I/O, when there is nothing to collapse.
//
// Each unresolved past item becomes a failure stamped at the start of the
// day it was assigned. Failures, the new queue and today's assignment day
// are written in a single update.
func (c *Collapser) ReconcileIfStale(ctx context.Context, userID string, doc progress.Document, rng progress.LevelRange, today string, perDay int) (bool, error) {
	assigned := doc.CurrentAssignedDay
	if assigned == "" {
		assigned = progress.OldestQueuedDay(doc.Current)
	}
	if assigned == "" || !daykey.Before(assigned, today) {
		return false, nil
	}

	var past, notPast []progress.CurrentQueueItem
	for _, it := range doc.Current {
		day := it.AssignedDay
		if day == "" {
			day = assigned
		}
		if daykey.Before(day, today) {
			past = append(past, progress.CurrentQueueItem{LessonNumber: it.LessonNumber, AssignedDay: day})
		} else {
			notPast = append(notPast, it)
		}
	}
	if len(past) == 0 {
		return false, nil
	}

	work := doc
	work.Current = notPast
	for _, it := range past {
		rec := progress.FailureRecord{LessonNumber: it.LessonNumber, AssignedDay: daykey.DayPortion(it.AssignedDay)}
		if at, err := daykey.Start(it.AssignedDay, c.offset); err == nil {
			rec.AttemptedAt = at
		}
		work, _ = progress.UpsertFailure(work, rec)
	}

	d := Decide(work, today, rng, perDay, c.offset)
	current := progress.MergeQueue(notPast, Stamp(d.Next, today))

	patch := progress.Patch{
		Failed:             &work.Failed,
		Current:            &current,
		CurrentAssignedDay: &today,
	}
	if err := c.store.Update(ctx, userID, patch); err != nil {
		return false, fmt.Errorf("collapse stale queue: %w", err)
	}

	c.log.Info("stale queue collapsed", "user_id", userID, "day", today, "failed", len(past), "assigned", d.Next)
	c.mirror.Publish(ctx, userID, patch.Apply(doc))
	return true, nil
}
