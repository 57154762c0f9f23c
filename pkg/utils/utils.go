package utils

import (
	"fmt"
	"time"
)

// FormatSeconds renders a span with its two largest units, e.g. 42s, 3m20s,
// 1h5m or 2d3h. A zero lower unit is dropped and negative spans print as
// their absolute value.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}

	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
	)

	switch {
	case seconds < minute:
		return fmt.Sprintf("%ds", seconds)
	case seconds < hour:
		return compound(seconds/minute, "m", seconds%minute, "s")
	case seconds < day:
		return compound(seconds/hour, "h", (seconds%hour)/minute, "m")
	default:
		return compound(seconds/day, "d", (seconds%day)/hour, "h")
	}
}

// FormatDuration is FormatSeconds for a time.Duration, truncated to seconds
func FormatDuration(d time.Duration) string {
	return FormatSeconds(int64(d / time.Second))
}

func compound(major int64, majorUnit string, minor int64, minorUnit string) string {
	if minor == 0 {
		return fmt.Sprintf("%d%s", major, majorUnit)
	}
	return fmt.Sprintf("%d%s%d%s", major, majorUnit, minor, minorUnit)
}
