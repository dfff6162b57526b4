package progress

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for malformed or inverted lesson ranges.
var ErrInvalidRange = errors.New("invalid lesson range")

// LevelRange is an inclusive, contiguous span of lesson numbers.
type LevelRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether lesson n falls in the range.
func (r LevelRange) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// Size returns the number of lessons in the range.
func (r LevelRange) Size() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r LevelRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Validate checks that the range is positive and not inverted.
func (r LevelRange) Validate() error {
	if r.Start < 1 || r.End < r.Start {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	return nil
}

// Level names a proficiency level and its lesson span.
type Level struct {
	Name  string
	Range LevelRange
}

// Levels is the built-in catalog, ordered by difficulty.
var Levels = []Level{
	{Name: "A", Range: LevelRange{Start: 1, End: 66}},
	{Name: "B", Range: LevelRange{Start: 67, End: 150}},
	{Name: "C", Range: LevelRange{Start: 151, End: 270}},
	{Name: "D", Range: LevelRange{Start: 271, End: 420}},
	{Name: "E", Range: LevelRange{Start: 421, End: 600}},
}

// LevelByName looks up a level (case-insensitive).
func LevelByName(name string) (Level, bool) {
	for _, l := range Levels {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Level{}, false
}

// ParseRange parses "start-end" or a level name.
func ParseRange(s string) (LevelRange, error) {
	s = strings.TrimSpace(s)
	if l, ok := LevelByName(s); ok {
		return l.Range, nil
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return LevelRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return LevelRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return LevelRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	r := LevelRange{Start: start, End: end}
	return r, r.Validate()
}
