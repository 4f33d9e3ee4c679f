package schedule

import (
	"sort"
	"time"
)

// Slot is a (day, time) pair placed on a concrete date.
type Slot struct {
	Day   Day       `json:"day"`
	Time  float64   `json:"time"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
}

// WeekStart returns midnight of the Sunday that begins t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(t.Weekday()))
}

// DateInWeek places (day, c) inside now's week. The result may be in the past.
func DateInWeek(now time.Time, day Day, c Clock) time.Time {
	d := WeekStart(now).AddDate(0, 0, int(day))
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, now.Location())
}

// NextOccurrence returns the first instant at or after now that falls on (day, c).
func NextOccurrence(now time.Time, day Day, c Clock) time.Time {
	t := DateInWeek(now, day, c)
	if t.Before(now) {
		t = t.AddDate(0, 0, 7)
	}
	return t
}

// Upcoming keeps the days of list that have not passed yet this week. Today
// counts as upcoming.
func Upcoming(list []DaySchedule, now time.Time) []DaySchedule {
	today := DayOf(now)
	out := []DaySchedule{}
	for _, ds := range list {
		if ds.Day >= today && len(ds.Times) > 0 {
			out = append(out, ds.clone())
		}
	}
	return out
}

// Occurrences expands list into dated slots inside now's week, in
// chronological order.
func Occurrences(list []DaySchedule, now time.Time) []Slot {
	var slots []Slot
	for _, ds := range list {
		for _, c := range ds.Clocks() {
			slots = append(slots, Slot{
				Day:   ds.Day,
				Time:  c.Hours(),
				Label: c.String(),
				Start: DateInWeek(now, ds.Day, c),
			})
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return slots
}

// Elapsed reports whether every time on the last weekday present in list is
// strictly before now, with days placed in now's week. An empty list has not
// elapsed.
func Elapsed(list []DaySchedule, now time.Time) bool {
	last := Day(-1)
	var clocks []Clock
	for _, ds := range list {
		cs := ds.Clocks()
		if len(cs) == 0 || ds.Day < last {
			continue
		}
		if ds.Day > last {
			last = ds.Day
			clocks = nil
		}
		clocks = append(clocks, cs...)
	}
	if len(clocks) == 0 {
		return false
	}
	for _, c := range clocks {
		if !DateInWeek(now, last, c).Before(now) {
			return false
		}
	}
	return true
}
