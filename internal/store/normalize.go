package store

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// ErrMalformedDocument is returned by Normalize when the input is not a
// JSON object.
var ErrMalformedDocument = errors.New("store: malformed document")

// Field aliases written by earlier releases of the client.
var (
	completedKeys   = []string{"completed", "completedLessons"}
	failedKeys      = []string{"failed", "failedLessons"}
	currentKeys     = []string{"current", "currentLessons"}
	assignedDayKeys = []string{"currentAssignedDay", "lessonDateAssigned", "currentLessonDate"}
	examKeys        = []string{"examRecords", "examStats", "exams"}

	lessonKeys      = []string{"lessonNumber", "lessonNo", "lesson", "number"}
	recordDayKeys   = []string{"assignedDay", "lessonDate", "date", "day"}
	completedAtKeys = []string{"completedAt", "timestamp", "completedTimestamp"}
	attemptedAtKeys = []string{"attemptedAt", "failedAt", "timestamp"}
	quizKeys        = []string{"quiz", "quizSnapshot", "quizSnapshots"}
)

// Normalize decodes a whole progress document, tolerating legacy field
// names and shapes. Entries that cannot be read are dropped and the
// result satisfies the document invariants.
func Normalize(raw []byte) (progress.Document, error) {
	if !gjson.ValidBytes(raw) {
		return progress.Document{}, ErrMalformedDocument
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return progress.Document{}, ErrMalformedDocument
	}

	doc := progress.Document{
		Completed:          completions(first(root, completedKeys...)),
		Failed:             failures(first(root, failedKeys...)),
		CurrentAssignedDay: daykey.DayPortion(first(root, assignedDayKeys...).String()),
		ExamRecords:        examRecords(first(root, examKeys...)),
	}
	doc.Current = queueItems(first(root, currentKeys...), doc.CurrentAssignedDay)
	return canonical(doc), nil
}

// decodeColumns reads the stored columns. Unreadable columns decode as empty.
func decodeColumns(c columns) progress.Document {
	doc := progress.Document{
		Completed:          completions(parse(c.Completed)),
		Failed:             failures(parse(c.Failed)),
		CurrentAssignedDay: daykey.DayPortion(c.CurrentAssignedDay),
		ExamRecords:        examRecords(parse(c.ExamRecords)),
	}
	doc.Current = queueItems(parse(c.Current), doc.CurrentAssignedDay)
	return canonical(doc)
}

func parse(s string) gjson.Result {
	if s == "" || !gjson.Valid(s) {
		return gjson.Result{}
	}
	return gjson.Parse(s)
}

// canonical enforces the document invariants: one record per lesson in
// Completed and Failed, completion taking precedence, Current disjoint
// from both, and capped history.
func canonical(doc progress.Document) progress.Document {
	completed := make([]progress.CompletionRecord, 0, len(doc.Completed))
	seen := make(map[int]int, len(doc.Completed))
	for _, c := range doc.Completed {
		if i, ok := seen[c.LessonNumber]; ok {
			completed[i] = c
			continue
		}
		seen[c.LessonNumber] = len(completed)
		completed = append(completed, c)
	}

	failed := make([]progress.FailureRecord, 0, len(doc.Failed))
	failedAt := make(map[int]int, len(doc.Failed))
	for _, f := range doc.Failed {
		if _, done := seen[f.LessonNumber]; done {
			continue
		}
		if i, ok := failedAt[f.LessonNumber]; ok {
			failed[i] = f
			continue
		}
		failedAt[f.LessonNumber] = len(failed)
		failed = append(failed, f)
	}

	current := make([]progress.CurrentQueueItem, 0, len(doc.Current))
	for _, it := range progress.MergeQueue(doc.Current) {
		_, done := seen[it.LessonNumber]
		_, missed := failedAt[it.LessonNumber]
		if !done && !missed {
			current = append(current, it)
		}
	}

	doc.Completed = progress.CapCompleted(completed)
	doc.Failed = progress.CapFailed(failed)
	doc.Current = current
	if doc.CurrentAssignedDay == "" {
		doc.CurrentAssignedDay = progress.OldestQueuedDay(current)
	}
	if doc.ExamRecords == nil {
		doc.ExamRecords = []progress.ExamRecord{}
	}
	return doc
}

func completions(list gjson.Result) []progress.CompletionRecord {
	var out []progress.CompletionRecord
	entries(list, func(key string, v gjson.Result) {
		n, ok := lessonNumber(v, key)
		if !ok {
			return
		}
		out = append(out, progress.CompletionRecord{
			LessonNumber: n,
			CompletedAt:  timestamp(first(v, completedAtKeys...)),
			AssignedDay:  daykey.DayPortion(first(v, recordDayKeys...).String()),
			Quiz:         rawJSON(first(v, quizKeys...)),
		})
	})
	return out
}

func failures(list gjson.Result) []progress.FailureRecord {
	var out []progress.FailureRecord
	entries(list, func(key string, v gjson.Result) {
		n, ok := lessonNumber(v, key)
		if !ok {
			return
		}
		out = append(out, progress.FailureRecord{
			LessonNumber: n,
			AttemptedAt:  timestamp(first(v, attemptedAtKeys...)),
			AssignedDay:  daykey.DayPortion(first(v, recordDayKeys...).String()),
			Quiz:         rawJSON(first(v, quizKeys...)),
		})
	})
	return out
}

func queueItems(list gjson.Result, fallbackDay string) []progress.CurrentQueueItem {
	var out []progress.CurrentQueueItem
	entries(list, func(key string, v gjson.Result) {
		n, ok := lessonNumber(v, key)
		if !ok {
			return
		}
		day := daykey.DayPortion(first(v, recordDayKeys...).String())
		if day == "" {
			day = fallbackDay
		}
		out = append(out, progress.CurrentQueueItem{LessonNumber: n, AssignedDay: day})
	})
	return out
}

func examRecords(list gjson.Result) []progress.ExamRecord {
	var out []progress.ExamRecord
	entries(list, func(key string, v gjson.Result) {
		if !v.IsObject() {
			return
		}
		day := daykey.DayPortion(first(v, "examDay", "date", "day").String())
		if day == "" {
			day = daykey.DayPortion(key)
		}
		if len(day) != len(daykey.Layout) {
			return
		}

		rec := progress.ExamRecord{
			ID:         v.Get("id").String(),
			ExamDay:    day,
			RecordedAt: timestamp(first(v, "recordedAt", "createdAt", "timestamp")),
		}
		pair := first(v, "lessonNumberPair", "lessonPair", "pair", "lessons").Array()
		for i := 0; i < len(pair) && i < 2; i++ {
			n, _ := number(pair[i])
			rec.LessonPair[i] = n
		}
		stats := first(v, "examStats", "stats")
		if !stats.Exists() {
			stats = v
		}
		rec.Stats = progress.ExamStats{
			Correct:      int(stats.Get("correct").Int()),
			Total:        int(stats.Get("total").Int()),
			Score:        stats.Get("score").Float(),
			DurationSecs: int(first(stats, "durationSecs", "duration").Int()),
		}
		out = append(out, rec)
	})
	return out
}

// entries visits the elements of an array, or the members of an object
// keyed by lesson number. Anything else has no entries.
func entries(list gjson.Result, fn func(key string, v gjson.Result)) {
	switch {
	case list.IsArray():
		list.ForEach(func(_, v gjson.Result) bool {
			fn("", v)
			return true
		})
	case list.IsObject():
		list.ForEach(func(k, v gjson.Result) bool {
			fn(k.String(), v)
			return true
		})
	}
}

func first(v gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := v.Get(k); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// lessonNumber reads a lesson number from a bare value, a record field or
// the object key the record was stored under.
func lessonNumber(v gjson.Result, key string) (int, bool) {
	if v.IsObject() {
		if n, ok := number(first(v, lessonKeys...)); ok {
			return n, true
		}
		return number(gjson.Result{Type: gjson.String, Str: key})
	}
	return number(v)
}

func number(v gjson.Result) (int, bool) {
	var n int
	switch v.Type {
	case gjson.Number:
		n = int(v.Int())
	case gjson.String:
		parsed, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}

// timestamp accepts RFC 3339 strings, epoch seconds or milliseconds, and
// {seconds, nanoseconds} objects.
func timestamp(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		n := v.Int()
		if n > 1e11 {
			return time.UnixMilli(n).UTC()
		}
		return time.Unix(n, 0).UTC()
	case gjson.String:
		if t, err := time.Parse(time.RFC3339Nano, v.Str); err == nil {
			return t.UTC()
		}
	case gjson.JSON:
		if v.IsObject() {
			sec := first(v, "seconds", "_seconds")
			if sec.Exists() {
				nanos := first(v, "nanoseconds", "_nanoseconds").Int()
				return time.Unix(sec.Int(), nanos).UTC()
			}
		}
	}
	return time.Time{}
}

func rawJSON(v gjson.Result) json.RawMessage {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(v.Raw)
}
