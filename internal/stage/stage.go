// Package stage decides what the learner should do next from their
// progress and the current day. Resolve is pure: no clock reads, no I/O.
package stage

import "github.com/zaykha/JLPT-flashcard-sub001/internal/progress"

// Stage is the learner's momentary flow state.
type Stage string

const (
	Studying    Stage = "studying"
	ExamFresher Stage = "examFresher"
	Buy         Stage = "buy"
	// Idle is a safety fallback when the inputs violate an invariant.
	Idle Stage = "idle"
)

// Decision reasons.
const (
	ReasonActiveQueue      = "active_queue"
	ReasonQuotaPending     = "quota_pending"
	ReasonExamPending      = "exam_pending"
	ReasonExamDone         = "exam_done"
	ReasonInsufficientPair = "insufficient_pair"
)

// Decision is the outcome of Resolve. Pair is set only for ExamFresher.
type Decision struct {
	Stage     Stage
	Pair      [2]int
	HasPair   bool
	Reason    string
	DoneToday int
}

// Resolve picks the stage for today. An active queue always wins; once
// perDay lessons are done the learner takes the day's exam over the last
// two lessons done, and after the exam is recorded they are offered a
// purchase.
func Resolve(doc progress.Document, today string, perDay, offsetHours int) Decision {
	if perDay < 1 {
		perDay = 1
	}

	outcomes := doc.OutcomesOn(today, offsetHours)
	d := Decision{DoneToday: len(outcomes)}

	switch {
	case len(doc.Current) > 0:
		d.Stage, d.Reason = Studying, ReasonActiveQueue
	case len(outcomes) < perDay:
		d.Stage, d.Reason = Studying, ReasonQuotaPending
	case doc.ExamOn(today):
		d.Stage, d.Reason = Buy, ReasonExamDone
	case len(outcomes) < 2:
		d.Stage, d.Reason = Idle, ReasonInsufficientPair
	default:
		last := outcomes[len(outcomes)-2:]
		d.Stage, d.Reason = ExamFresher, ReasonExamPending
		d.Pair = [2]int{last[0].LessonNumber, last[1].LessonNumber}
		d.HasPair = true
	}
	return d
}
