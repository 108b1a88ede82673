package report

import (
	"fmt"
	"time"
)

// FormatDuration renders d as HH:MM:SS from its whole seconds. Hours are not
// wrapped into days, so 125 hours is "125:00:00". Negative durations render
// as zero.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
