// Package timeparse resolves clock-time strings such as "21:30",
// "21時30分" or "午後9時" to the next occurrence of that wall-clock
// time. It is a pure utility; richer natural-language parsing is out
// of scope.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock parses a clock-time string into an hour and minute.
func Clock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty time string")
	}
	if strings.Contains(s, "時") {
		return parseJapaneseClock(s)
	}
	if strings.Contains(s, ":") {
		return parseColonClock(s)
	}
	return 0, 0, fmt.Errorf("unrecognized time format: %q", s)
}

// NextOccurrence resolves the clock time to today in loc, or tomorrow
// when that moment has already passed.
func NextOccurrence(s string, now time.Time, loc *time.Location) (time.Time, error) {
	hour, minute, err := Clock(s)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)
	t := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), hour, minute, 0, 0, loc)
	if !t.After(localNow) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func parseColonClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return validateClock(s, hour, minute)
}

func parseJapaneseClock(s string) (int, int, error) {
	pm := strings.Contains(s, "午後")
	am := strings.Contains(s, "午前")
	body := strings.NewReplacer("午前", "", "午後", "", " ", "", "　", "").Replace(s)

	hourPart, rest, found := strings.Cut(body, "時")
	if !found {
		return 0, 0, fmt.Errorf("unrecognized time format: %q", s)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute := 0
	if rest != "" {
		minutePart := strings.TrimSuffix(rest, "分")
		if minutePart == rest {
			return 0, 0, fmt.Errorf("unrecognized time format: %q", s)
		}
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid minute in %q", s)
		}
	}
	if pm && hour < 12 {
		hour += 12
	}
	if am && hour == 12 {
		hour = 0
	}
	return validateClock(s, hour, minute)
}

func validateClock(s string, hour, minute int) (int, int, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", s)
	}
	return hour, minute, nil
}
