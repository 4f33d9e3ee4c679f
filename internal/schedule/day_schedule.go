package schedule

import (
	"fmt"
	"slices"
	"sort"
)

// DaySchedule is the wire record exchanged with clients: a weekday and the
// times selected on it, as float hours.
type DaySchedule struct {
	Day   Day       `json:"day"`
	Times []float64 `json:"times"`
}

// Clocks decodes Times, skipping values that are not valid times of day.
func (ds DaySchedule) Clocks() []Clock {
	out := make([]Clock, 0, len(ds.Times))
	for _, t := range ds.Times {
		c, err := ClockFromHours(t)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (ds DaySchedule) Has(c Clock) bool {
	return slices.Contains(ds.Clocks(), c)
}

func (ds DaySchedule) clone() DaySchedule {
	return DaySchedule{Day: ds.Day, Times: slices.Clone(ds.Times)}
}

// Validate checks the day and every time. When halfHour is set, times must
// also sit on the half-hour grid.
func (ds DaySchedule) Validate(halfHour bool) error {
	if !ds.Day.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDay, int(ds.Day))
	}
	for _, t := range ds.Times {
		c, err := ClockFromHours(t)
		if err != nil {
			return fmt.Errorf("%s: %w", ds.Day, err)
		}
		if halfHour && !c.OnGrid() {
			return fmt.Errorf("%s: %w: %v is not on the half-hour grid", ds.Day, ErrInvalidTime, t)
		}
	}
	return nil
}

// Normalize coalesces entries for the same day, drops duplicate and invalid
// times, sorts times ascending, prunes empty days and orders days Sunday first.
func Normalize(list []DaySchedule) []DaySchedule {
	byDay := map[Day][]Clock{}
	for _, ds := range list {
		if !ds.Day.Valid() {
			continue
		}
		for _, c := range ds.Clocks() {
			if !slices.Contains(byDay[ds.Day], c) {
				byDay[ds.Day] = append(byDay[ds.Day], c)
			}
		}
	}

	out := []DaySchedule{}
	for _, d := range Week {
		clocks := byDay[d]
		if len(clocks) == 0 {
			continue
		}
		sort.Slice(clocks, func(i, j int) bool { return clocks[i] < clocks[j] })
		times := make([]float64, len(clocks))
		for i, c := range clocks {
			times[i] = c.Hours()
		}
		out = append(out, DaySchedule{Day: d, Times: times})
	}
	return out
}

// CountTimes returns the number of (day, time) pairs in list.
func CountTimes(list []DaySchedule) int {
	n := 0
	for _, ds := range list {
		n += len(ds.Times)
	}
	return n
}

// Contains reports whether (day, c) is offered anywhere in list.
func Contains(list []DaySchedule, day Day, c Clock) bool {
	for _, ds := range list {
		if ds.Day == day && ds.Has(c) {
			return true
		}
	}
	return false
}
