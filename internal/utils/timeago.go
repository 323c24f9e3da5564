package utils

import (
	"fmt"
	"time"
)

const (
	secondsPerHour = 3600
	secondsPerDay  = 86400
)

// TimeAgo renders the age of t relative to now.
// Each threshold is strict: 60s is "just now", 61s is "1m ago".
// Days are whole elapsed days; hours and minutes are taken from the
// remainder within the current day, so they only apply when days == 0.
func TimeAgo(t, now time.Time) string {
	elapsed := int64(now.Sub(t) / time.Second)
	if elapsed < 0 {
		return "just now"
	}
	days := elapsed / secondsPerDay
	seconds := elapsed % secondsPerDay

	switch {
	case days > 365:
		return fmt.Sprintf("%dy ago", days/365)
	case days > 30:
		return fmt.Sprintf("%dmo ago", days/30)
	case days > 0:
		return fmt.Sprintf("%dd ago", days)
	case seconds > secondsPerHour:
		return fmt.Sprintf("%dh ago", seconds/secondsPerHour)
	case seconds > 60:
		return fmt.Sprintf("%dm ago", seconds/60)
	default:
		return "just now"
	}
}
