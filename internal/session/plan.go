package session

import (
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/spacedrep"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/stage"
)

// Plan is what the learner should see right now.
type Plan struct {
	UserID  string
	Day     string
	Stage   stage.Decision
	Current []progress.CurrentQueueItem
	Reviews []spacedrep.Review
	Summary DaySummary

	Collapsed    bool
	QueueWritten bool
	Exhausted    bool
	FromCache    bool
}

// DaySummary counts the learner's activity on one day.
type DaySummary struct {
	Day       string
	Completed int
	Failed    int
	Queued    int
	ExamTaken bool
	Exam      *progress.ExamRecord
}

func (s *Service) plan(userID string, doc progress.Document, today string) Plan {
	return Plan{
		UserID:  userID,
		Day:     today,
		Stage:   stage.Resolve(doc, today, s.cfg.PerDay, s.cfg.OffsetHours),
		Current: doc.Current,
		Reviews: spacedrep.DueReviews(doc.Completed, today, s.cfg.OffsetHours),
		Summary: BuildSummary(doc, today, s.cfg.OffsetHours),
	}
}

// BuildSummary tallies doc's activity on day.
func BuildSummary(doc progress.Document, day string, offsetHours int) DaySummary {
	sum := DaySummary{Day: day, Queued: doc.QueuedOn(day)}
	for _, o := range doc.OutcomesOn(day, offsetHours) {
		if o.Completed {
			sum.Completed++
		} else {
			sum.Failed++
		}
	}
	for i := range doc.ExamRecords {
		if doc.ExamRecords[i].ExamDay == day {
			rec := doc.ExamRecords[i]
			sum.ExamTaken = true
			sum.Exam = &rec
			break
		}
	}
	return sum
}
