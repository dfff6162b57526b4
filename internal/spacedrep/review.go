// Package spacedrep suggests reviews of completed lessons on a fixed
// expanding schedule. Suggestions never change the daily queue.
package spacedrep

import (
	"sort"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// Review is a completed lesson due for review.
type Review struct {
	LessonNumber int    `json:"lessonNumber"`
	Stage        int    `json:"stage"`
	CompletedDay string `json:"completedDay"`
	DaysSince    int    `json:"daysSince"`
}

// Upcoming is the next scheduled review of a completed lesson.
type Upcoming struct {
	LessonNumber int    `json:"lessonNumber"`
	Stage        int    `json:"stage"`
	Day          string `json:"day"`
}

// DueReviews lists completed lessons whose days since completion match a
// schedule interval today, most recently completed first.
func DueReviews(completed []progress.CompletionRecord, today string, offsetHours int) []Review {
	var due []Review
	for _, c := range completed {
		day := progress.RecordDay(c.CompletedAt, c.AssignedDay, offsetHours)
		since, err := daykey.DaysBetween(day, today)
		if err != nil {
			continue
		}
		stage, ok := StageFor(since)
		if !ok {
			continue
		}
		due = append(due, Review{
			LessonNumber: c.LessonNumber,
			Stage:        stage,
			CompletedDay: day,
			DaysSince:    since,
		})
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].DaysSince != due[j].DaysSince {
			return due[i].DaysSince < due[j].DaysSince
		}
		return due[i].LessonNumber < due[j].LessonNumber
	})
	return due
}

// Schedule returns the next review, on or after today, for every completed
// lesson still inside the schedule, soonest first.
func Schedule(completed []progress.CompletionRecord, today string, offsetHours int) []Upcoming {
	var out []Upcoming
	for _, c := range completed {
		day := progress.RecordDay(c.CompletedAt, c.AssignedDay, offsetHours)
		since, err := daykey.DaysBetween(day, today)
		if err != nil || since < 0 {
			continue
		}
		stage, ok := NextStage(since)
		if !ok {
			continue
		}
		start, err := daykey.Start(day, 0)
		if err != nil {
			continue
		}
		out = append(out, Upcoming{
			LessonNumber: c.LessonNumber,
			Stage:        stage,
			Day:          daykey.Key(start.AddDate(0, 0, BaseIntervals[stage]), 0),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].LessonNumber < out[j].LessonNumber
	})
	return out
}
