package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Months have no fixed length; the engine uses 30 days, matching how the
// rules files in the wild are written ("2 months" means "roughly 60 days").
const daysPerMonth = 30

// ParseRelativeDuration parses a human-authored offset like "7 days" or
// "2 months" into a duration. The unit is case-insensitive and tolerates
// surrounding whitespace; the count must be a positive integer.
func ParseRelativeDuration(s string) (time.Duration, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q (want \"<n> days\" or \"<n> months\")", ErrBadDuration, s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q (count must be a positive integer)", ErrBadDuration, s)
	}
	switch strings.ToLower(parts[1]) {
	case "day", "days":
		return time.Duration(n) * 24 * time.Hour, nil
	case "month", "months":
		return time.Duration(n) * daysPerMonth * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrBadDuration, parts[1])
	}
}
