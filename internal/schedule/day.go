package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDay = errors.New("invalid day")

// Day is a weekday in canonical week order, Sunday first.
type Day int

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Week lists the days in canonical order.
var Week = []Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var dayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// abbreviations used by the day picker
var dayAbbrevs = [...]string{"Su", "M", "Tu", "W", "Th", "F", "Sa"}

func (d Day) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// String returns the lowercase wire name.
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("day(%d)", int(d))
	}
	return dayNames[d]
}

func (d Day) Abbrev() string {
	if !d.Valid() {
		return ""
	}
	return dayAbbrevs[d]
}

func DayOf(t time.Time) Day {
	return Day(t.Weekday())
}

// ParseDay accepts full weekday names or picker abbreviations, in any case.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for i, name := range dayNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, dayAbbrevs[i]) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
