package routine

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	everyMinutesRe = regexp.MustCompile(`^every (\d+) minutes?$`)
	everyHoursRe   = regexp.MustCompile(`^every (\d+) hours?$`)
)

// ParseSchedule maps a fixed set of schedule phrases to a timer interval.
// Supported: "every hour", "every day"/"daily", "every week"/"weekly",
// "every N minutes", "every N hours" (N a positive integer). Returns
// false for anything else; the caller installs no timer in that case.
func ParseSchedule(schedule string) (time.Duration, bool) {
	s := strings.ToLower(strings.TrimSpace(schedule))

	switch s {
	case "every hour":
		return time.Hour, true
	case "every day", "daily":
		return 24 * time.Hour, true
	case "every week", "weekly":
		return 7 * 24 * time.Hour, true
	}

	if m := everyMinutesRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return time.Duration(n) * time.Minute, true
		}
	}
	if m := everyHoursRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return time.Duration(n) * time.Hour, true
		}
	}

	return 0, false
}
