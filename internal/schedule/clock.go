package schedule

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidTime = errors.New("invalid time")

const minutesPerDay = 24 * 60

// The picker grid runs from 9:00 AM to 8:30 PM. Bare "h:mm" strings are read
// against it: 9-11 are morning, 12 is noon, 1-8 are afternoon/evening.
const (
	gridOpen  = Clock(9 * 60)
	gridClose = Clock(21 * 60)
)

// Clock is a time of day in minutes since midnight.
type Clock int

func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %d:%02d", ErrInvalidTime, hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// ClockFromHours converts the float-hours wire encoding (17.5 = 5:30 PM).
func ClockFromHours(h float64) (Clock, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTime, h)
	}
	m := int(math.Round(h * 60))
	if m >= minutesPerDay {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTime, h)
	}
	return Clock(m), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Hours returns the wire encoding.
func (c Clock) Hours() float64 {
	return float64(c) / 60
}

// OnGrid reports whether c falls on a half-hour boundary.
func (c Clock) OnGrid() bool {
	return c%30 == 0
}

// String renders the picker form: bare "h:mm" inside the grid, an explicit
// am/pm suffix outside it so the value still parses back unambiguously.
func (c Clock) String() string {
	h12 := c.Hour() % 12
	if h12 == 0 {
		h12 = 12
	}
	s := fmt.Sprintf("%d:%02d", h12, c.Minute())
	if c >= gridOpen && c < gridClose {
		return s
	}
	if c.Hour() < 12 {
		return s + " am"
	}
	return s + " pm"
}

// ParseClock reads "h:mm" (grid convention), "h:mm am|pm", or a zero-padded
// or >= 13 24-hour "HH:MM".
func ParseClock(s string) (Clock, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))

	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hourStr, minStr, ok := strings.Cut(s, ":")
	if !ok || len(minStr) != 2 || hourStr == "" || len(hourStr) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	minute, err := strconv.Atoi(minStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	switch {
	case meridiem != "":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	case strings.HasPrefix(hourStr, "0") || hour == 0 || hour >= 13:
		// 24-hour form
	case hour < gridOpen.Hour():
		hour += 12
	}

	return NewClock(hour, minute)
}

// StringTimeToFloat converts a picker time string to float hours. Unparseable
// input maps to 0; use ParseClock to detect it.
func StringTimeToFloat(s string) float64 {
	c, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return c.Hours()
}

// FloatToStringTime is the inverse of StringTimeToFloat. Out of range values
// render as the empty string.
func FloatToStringTime(h float64) string {
	c, err := ClockFromHours(h)
	if err != nil {
		return ""
	}
	return c.String()
}
