package schedule

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Mode is the selection discipline.
type Mode int

const (
	// Multiple lets the user toggle any number of slots.
	Multiple Mode = iota
	// Single keeps at most one slot; a new pick replaces the old one.
	Single
)

func (m Mode) String() string {
	switch m {
	case Multiple:
		return "multiple"
	case Single:
		return "single"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "multiple":
		return Multiple, nil
	case "single":
		return Single, nil
	}
	return 0, fmt.Errorf("unknown selection mode %q", s)
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Selection holds the slots picked during one scheduling session. Only the
// payload matching mode is used.
type Selection struct {
	mode     Mode
	multiple []DaySchedule
	single   *DaySchedule
}

// FromAvailabilities starts a multi-select session seeded with list.
func FromAvailabilities(list []DaySchedule) *Selection {
	return &Selection{mode: Multiple, multiple: Normalize(list)}
}

// Empty starts a single-select session with nothing picked.
func Empty() *Selection {
	return &Selection{mode: Single}
}

func (s *Selection) Mode() Mode { return s.mode }

// Add selects (day, timeString). Invalid input is rejected and leaves the
// selection unchanged.
func (s *Selection) Add(day Day, timeString string) error {
	c, err := s.parse(day, timeString)
	if err != nil {
		return err
	}
	switch s.mode {
	case Single:
		s.single = &DaySchedule{Day: day, Times: []float64{c.Hours()}}
	case Multiple:
		for i := range s.multiple {
			if s.multiple[i].Day != day {
				continue
			}
			if !s.multiple[i].Has(c) {
				s.multiple[i].Times = append(s.multiple[i].Times, c.Hours())
			}
			return nil
		}
		s.multiple = append(s.multiple, DaySchedule{Day: day, Times: []float64{c.Hours()}})
	}
	return nil
}

// Remove deselects (day, timeString). In single mode any removal clears the
// pick.
func (s *Selection) Remove(day Day, timeString string) error {
	c, err := s.parse(day, timeString)
	if err != nil {
		return err
	}
	switch s.mode {
	case Single:
		s.single = nil
	case Multiple:
		i := slices.IndexFunc(s.multiple, func(ds DaySchedule) bool { return ds.Day == day })
		if i < 0 {
			return nil
		}
		s.multiple[i].Times = slices.DeleteFunc(s.multiple[i].Times, func(t float64) bool {
			tc, err := ClockFromHours(t)
			return err == nil && tc == c
		})
		if len(s.multiple[i].Times) == 0 {
			s.multiple = slices.Delete(s.multiple, i, i+1)
		}
	}
	return nil
}

// Schedules returns a copy of the selection in wire form.
func (s *Selection) Schedules() []DaySchedule {
	switch s.mode {
	case Single:
		if s.single == nil {
			return []DaySchedule{}
		}
		return []DaySchedule{s.single.clone()}
	default:
		out := make([]DaySchedule, len(s.multiple))
		for i, ds := range s.multiple {
			out[i] = ds.clone()
		}
		return out
	}
}

func (s *Selection) NumberSelected() int {
	switch s.mode {
	case Single:
		if s.single == nil {
			return 0
		}
		return 1
	default:
		return CountTimes(s.multiple)
	}
}

// CanConfirm gates the save/confirm action.
func (s *Selection) CanConfirm() bool {
	return s.NumberSelected() > 0
}

func (s *Selection) parse(day Day, timeString string) (Clock, error) {
	if !day.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDay, int(day))
	}
	return ParseClock(timeString)
}
