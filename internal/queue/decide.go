// Package queue assigns each day's batch of lessons and rolls stale queues
// over into failures. Decide is pure; Reconciler and Collapser persist its
// verdicts through the document store.
package queue

import "github.com/zaykha/JLPT-flashcard-sub001/internal/progress"

// Decision reasons.
const (
	ReasonQuotaMet = "quota_met"
	ReasonOK       = "ok"
)

// Decision is the verdict of Decide. Exhausted is set when the level range
// ran out before the requested count was reached.
type Decision struct {
	ShouldWrite bool
	Reason      string
	Next        []int
	Exhausted   bool
}

// Decide picks the lessons to assign today. Lessons resolved today and
// lessons already queued for today both count toward perDay; the rest is
// filled with untouched lesson numbers strictly above the highest touched
// one, in increasing order, never past rng.End.
func Decide(doc progress.Document, today string, rng progress.LevelRange, perDay, offsetHours int) Decision {
	if perDay < 1 {
		perDay = 1
	}

	committed := len(doc.OutcomesOn(today, offsetHours)) + doc.QueuedOn(today)
	if committed >= perDay {
		return Decision{Reason: ReasonQuotaMet}
	}
	want := perDay - committed

	touched := doc.Touched()
	n := rng.Start
	for lesson := range touched {
		if lesson >= n {
			n = lesson + 1
		}
	}

	next := make([]int, 0, want)
	for ; n <= rng.End && len(next) < want; n++ {
		if !touched[n] {
			next = append(next, n)
		}
	}

	return Decision{
		ShouldWrite: true,
		Reason:      ReasonOK,
		Next:        next,
		Exhausted:   len(next) < want,
	}
}

// Stamp turns lesson numbers into queue items assigned on day.
func Stamp(lessons []int, day string) []progress.CurrentQueueItem {
	items := make([]progress.CurrentQueueItem, len(lessons))
	for i, n := range lessons {
		items[i] = progress.CurrentQueueItem{LessonNumber: n, AssignedDay: day}
	}
	return items
}
