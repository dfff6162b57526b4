package spacedrep

import "testing"

func TestBaseIntervals_Values(t *testing.T) {
	expected := []int{1, 3, 7, 14, 30, 60}
	if len(BaseIntervals) != len(expected) {
		t.Fatalf("expected %d base intervals, got %d", len(expected), len(BaseIntervals))
	}
	for i, v := range expected {
		if BaseIntervals[i] != v {
			t.Errorf("BaseIntervals[%d] = %d, want %d", i, BaseIntervals[i], v)
		}
	}
}

func TestStageFor(t *testing.T) {
	tests := []struct {
		days   int
		stage  int
		wantOK bool
	}{
		{0, 0, false},
		{1, 0, true},
		{2, 0, false},
		{3, 1, true},
		{7, 2, true},
		{14, 3, true},
		{30, 4, true},
		{60, 5, true},
		{90, 0, false},
	}
	for _, tt := range tests {
		stage, ok := StageFor(tt.days)
		if ok != tt.wantOK || stage != tt.stage {
			t.Errorf("StageFor(%d) = (%d, %v), want (%d, %v)", tt.days, stage, ok, tt.stage, tt.wantOK)
		}
	}
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		days   int
		stage  int
		wantOK bool
	}{
		{0, 0, true},
		{2, 1, true},
		{8, 3, true},
		{60, 5, true},
		{61, 0, false},
	}
	for _, tt := range tests {
		stage, ok := NextStage(tt.days)
		if ok != tt.wantOK || stage != tt.stage {
			t.Errorf("NextStage(%d) = (%d, %v), want (%d, %v)", tt.days, stage, ok, tt.stage, tt.wantOK)
		}
	}
}
