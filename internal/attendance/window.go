// Package attendance converts "who was just seen, and when" into a
// well-defined attendance event or an informational rejection, subject to
// configurable check-in and check-out time windows.
package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a same-day, inclusive minute-of-day interval during which a
// particular attendance transition is permitted. Windows never cross
// midnight: Start <= End always holds.
type Window struct {
	Start int // minute of day, 0..1439
	End   int // minute of day, 0..1439
}

// Contains reports whether the local time t falls inside the window,
// inclusive on both ends.
func (w Window) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	return w.Start <= minute && minute <= w.End
}

// String formats the window as "HH:MM-HH:MM".
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// ParseWindow parses a window from "HH:MM-HH:MM" form. Hours must be 0-23,
// minutes 0-59, and the start must not be after the end.
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid window %q: expected HH:MM-HH:MM", s)
	}

	start, err := parseMinuteOfDay(strings.TrimSpace(parts[0]))
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}
	end, err := parseMinuteOfDay(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
	}

	if start > end {
		return Window{}, fmt.Errorf("invalid window %q: start after end", s)
	}
	return Window{Start: start, End: end}, nil
}

func parseMinuteOfDay(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}
