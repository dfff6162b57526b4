package exam

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateEntryJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"full entry", `{"examDay":"2025-03-10","lessonNumberPair":[3,4],"examStats":{"correct":8,"total":10,"score":0.8,"durationSecs":95}}`, false},
		{"timestamp day", `{"examDay":"2025-03-10T12:00:00+09:00","lessonNumberPair":[3,4]}`, false},
		{"missing day", `{"lessonNumberPair":[3,4]}`, true},
		{"bad day", `{"examDay":"yesterday","lessonNumberPair":[3,4]}`, true},
		{"one lesson", `{"examDay":"2025-03-10","lessonNumberPair":[3]}`, true},
		{"three lessons", `{"examDay":"2025-03-10","lessonNumberPair":[3,4,5]}`, true},
		{"zero lesson", `{"examDay":"2025-03-10","lessonNumberPair":[0,4]}`, true},
		{"negative stats", `{"examDay":"2025-03-10","lessonNumberPair":[3,4],"examStats":{"correct":-1}}`, true},
		{"not json", `{examDay`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryJSON(json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var invErr *ErrInvalidEntry
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidEntry, got: %T (%v)", err, err)
			}
		})
	}
}

func TestParseEntry(t *testing.T) {
	rec, err := ParseEntry(json.RawMessage(`{"examDay":"2025-03-10","lessonNumberPair":[3,4],"examStats":{"correct":8,"total":10,"score":0.8}}`))
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if rec.ExamDay != "2025-03-10" {
		t.Errorf("ExamDay = %q, want 2025-03-10", rec.ExamDay)
	}
	if rec.LessonPair != [2]int{3, 4} {
		t.Errorf("LessonPair = %v, want [3 4]", rec.LessonPair)
	}
	if rec.Stats.Correct != 8 || rec.Stats.Total != 10 {
		t.Errorf("Stats = %+v, want 8/10", rec.Stats)
	}
}
