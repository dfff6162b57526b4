package spacedrep

// BaseIntervals defines the expanding review schedule in days after a
// lesson is completed. Stage i is due BaseIntervals[i] days later.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// StageFor returns the stage whose interval is exactly daysSince.
func StageFor(daysSince int) (int, bool) {
	for i, d := range BaseIntervals {
		if d == daysSince {
			return i, true
		}
	}
	return 0, false
}

// NextStage returns the first stage due on or after daysSince days.
// It reports false once the schedule is exhausted.
func NextStage(daysSince int) (int, bool) {
	for i, d := range BaseIntervals {
		if d >= daysSince {
			return i, true
		}
	}
	return 0, false
}
