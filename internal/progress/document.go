// Package progress defines the learner progress document and the
// invariant-preserving edits applied to it.
//
// A lesson number appears in at most one of Completed, Failed and Current.
// Completed and Failed hold at most one record per lesson and at most
// MaxHistory records each.
package progress

import (
	"sort"
	"time"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
)

// Outcome is a resolved lesson (completed or failed) on a given day.
type Outcome struct {
	LessonNumber int
	At           time.Time
	Completed    bool
}

// RecordDay resolves the day of a record: its timestamp when present,
// otherwise the day the lesson was assigned.
func RecordDay(at time.Time, assignedDay string, offsetHours int) string {
	if !at.IsZero() {
		return daykey.Key(at, offsetHours)
	}
	return daykey.DayPortion(assignedDay)
}

// OutcomesOn returns the lessons completed or failed on day, in the order
// they were done. Records without a timestamp keep their list position
// relative to each other.
func (d Document) OutcomesOn(day string, offsetHours int) []Outcome {
	var out []Outcome
	for _, c := range d.Completed {
		if RecordDay(c.CompletedAt, c.AssignedDay, offsetHours) == day {
			out = append(out, Outcome{LessonNumber: c.LessonNumber, At: c.CompletedAt, Completed: true})
		}
	}
	for _, f := range d.Failed {
		if RecordDay(f.AttemptedAt, f.AssignedDay, offsetHours) == day {
			out = append(out, Outcome{LessonNumber: f.LessonNumber, At: f.AttemptedAt})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}

// QueuedOn counts current items stamped with day.
func (d Document) QueuedOn(day string) int {
	n := 0
	for _, it := range d.Current {
		if daykey.DayPortion(it.AssignedDay) == day {
			n++
		}
	}
	return n
}

// ExamOn reports whether an exam record exists for day.
func (d Document) ExamOn(day string) bool {
	day = daykey.DayPortion(day)
	for _, r := range d.ExamRecords {
		if daykey.DayPortion(r.ExamDay) == day {
			return true
		}
	}
	return false
}

// Touched returns every lesson number present in completed, failed or current.
func (d Document) Touched() map[int]bool {
	touched := make(map[int]bool, len(d.Completed)+len(d.Failed)+len(d.Current))
	for _, c := range d.Completed {
		touched[c.LessonNumber] = true
	}
	for _, f := range d.Failed {
		touched[f.LessonNumber] = true
	}
	for _, it := range d.Current {
		touched[it.LessonNumber] = true
	}
	return touched
}

// IsCompleted reports whether lesson has a completion record.
func (d Document) IsCompleted(lesson int) bool {
	for _, c := range d.Completed {
		if c.LessonNumber == lesson {
			return true
		}
	}
	return false
}

// UpsertCompletion records a completion, replacing any existing completion
// for the same lesson and removing the lesson from Failed and Current.
func UpsertCompletion(doc Document, rec CompletionRecord) Document {
	doc.Current = withoutQueued(doc.Current, rec.LessonNumber)

	failed := make([]FailureRecord, 0, len(doc.Failed))
	for _, f := range doc.Failed {
		if f.LessonNumber != rec.LessonNumber {
			failed = append(failed, f)
		}
	}
	doc.Failed = failed

	completed := make([]CompletionRecord, 0, len(doc.Completed)+1)
	replaced := false
	for _, c := range doc.Completed {
		if c.LessonNumber == rec.LessonNumber {
			completed = append(completed, rec)
			replaced = true
			continue
		}
		completed = append(completed, c)
	}
	if !replaced {
		completed = append(completed, rec)
	}
	doc.Completed = CapCompleted(completed)
	return doc
}

// UpsertFailure records a failure, replacing any existing failure for the
// same lesson and removing the lesson from Current. A completed lesson is
// left untouched and ok is false.
func UpsertFailure(doc Document, rec FailureRecord) (Document, bool) {
	if doc.IsCompleted(rec.LessonNumber) {
		return doc, false
	}
	doc.Current = withoutQueued(doc.Current, rec.LessonNumber)

	failed := make([]FailureRecord, 0, len(doc.Failed)+1)
	replaced := false
	for _, f := range doc.Failed {
		if f.LessonNumber == rec.LessonNumber {
			failed = append(failed, rec)
			replaced = true
			continue
		}
		failed = append(failed, f)
	}
	if !replaced {
		failed = append(failed, rec)
	}
	doc.Failed = CapFailed(failed)
	return doc, true
}

func withoutQueued(items []CurrentQueueItem, lesson int) []CurrentQueueItem {
	out := make([]CurrentQueueItem, 0, len(items))
	for _, it := range items {
		if it.LessonNumber != lesson {
			out = append(out, it)
		}
	}
	return out
}

// OldestQueuedDay returns the earliest non-empty AssignedDay in items, or
// "" when none is set.
func OldestQueuedDay(items []CurrentQueueItem) string {
	oldest := ""
	for _, it := range items {
		day := daykey.DayPortion(it.AssignedDay)
		if day != "" && (oldest == "" || day < oldest) {
			oldest = day
		}
	}
	return oldest
}

// MergeQueue combines queue lists into one, keyed by lesson number. Later
// lists win on AssignedDay. The result is ordered by lesson number.
func MergeQueue(lists ...[]CurrentQueueItem) []CurrentQueueItem {
	byLesson := make(map[int]string)
	for _, list := range lists {
		for _, it := range list {
			byLesson[it.LessonNumber] = it.AssignedDay
		}
	}
	out := make([]CurrentQueueItem, 0, len(byLesson))
	for n, day := range byLesson {
		out = append(out, CurrentQueueItem{LessonNumber: n, AssignedDay: day})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonNumber < out[j].LessonNumber })
	return out
}

// CapCompleted keeps the newest MaxHistory completions, oldest first.
func CapCompleted(list []CompletionRecord) []CompletionRecord {
	return capByTime(list, func(c CompletionRecord) time.Time { return c.CompletedAt })
}

// CapFailed keeps the newest MaxHistory failures, oldest first.
func CapFailed(list []FailureRecord) []FailureRecord {
	return capByTime(list, func(f FailureRecord) time.Time { return f.AttemptedAt })
}

func capByTime[T any](list []T, at func(T) time.Time) []T {
	if len(list) <= MaxHistory {
		return list
	}
	sorted := make([]T, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return at(sorted[i]).Before(at(sorted[j]))
	})
	return sorted[len(sorted)-MaxHistory:]
}
