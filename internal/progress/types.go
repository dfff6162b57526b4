package progress

import (
	"encoding/json"
	"time"
)

// MaxHistory caps the completed and failed lists.
const MaxHistory = 400

// CompletionRecord marks a lesson whose quiz was passed.
type CompletionRecord struct {
	LessonNumber int             `json:"lessonNumber"`
	CompletedAt  time.Time       `json:"completedAt,omitzero"`
	AssignedDay  string          `json:"assignedDay,omitempty"`
	Quiz         json.RawMessage `json:"quiz,omitempty"`
}

// FailureRecord marks a lesson whose day passed without completion, or
// whose quiz attempt was graded as failing.
type FailureRecord struct {
	LessonNumber int             `json:"lessonNumber"`
	AttemptedAt  time.Time       `json:"attemptedAt,omitzero"`
	AssignedDay  string          `json:"assignedDay,omitempty"`
	Quiz         json.RawMessage `json:"quiz,omitempty"`
}

// CurrentQueueItem is a lesson assigned for a day and not yet resolved.
type CurrentQueueItem struct {
	LessonNumber int    `json:"lessonNumber"`
	AssignedDay  string `json:"assignedDay"`
}

// ExamStats holds the graded outcome of a daily exam.
type ExamStats struct {
	Correct      int     `json:"correct"`
	Total        int     `json:"total"`
	Score        float64 `json:"score"`
	DurationSecs int     `json:"durationSecs,omitempty"`
}

// ExamRecord is the result of the exam taken on ExamDay over two lessons.
// At most one record exists per day.
type ExamRecord struct {
	ID         string    `json:"id,omitempty"`
	ExamDay    string    `json:"examDay"`
	LessonPair [2]int    `json:"lessonNumberPair"`
	Stats      ExamStats `json:"examStats"`
	RecordedAt time.Time `json:"recordedAt,omitzero"`
}

// Document is the learner's accumulated progress. The zero value is the
// empty document created on first access.
type Document struct {
	Completed          []CompletionRecord `json:"completed"`
	Failed             []FailureRecord    `json:"failed"`
	Current            []CurrentQueueItem `json:"current"`
	CurrentAssignedDay string             `json:"currentAssignedDay,omitempty"`
	ExamRecords        []ExamRecord       `json:"examRecords"`
}

// Patch is a partial update of a Document. Nil fields are left untouched.
type Patch struct {
	Completed          *[]CompletionRecord
	Failed             *[]FailureRecord
	Current            *[]CurrentQueueItem
	CurrentAssignedDay *string
	ExamRecords        *[]ExamRecord
}

// Apply returns doc with the patch fields replaced.
func (p Patch) Apply(doc Document) Document {
	if p.Completed != nil {
		doc.Completed = *p.Completed
	}
	if p.Failed != nil {
		doc.Failed = *p.Failed
	}
	if p.Current != nil {
		doc.Current = *p.Current
	}
	if p.CurrentAssignedDay != nil {
		doc.CurrentAssignedDay = *p.CurrentAssignedDay
	}
	if p.ExamRecords != nil {
		doc.ExamRecords = *p.ExamRecords
	}
	return doc
}
