package models

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DatePolicy decides what happens to an unparseable target date.
type DatePolicy string

const (
	DatePolicyReject   DatePolicy = "reject"
	DatePolicyUseToday DatePolicy = "use_today"
)

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseTargetDate parses a YYYY-MM-DD or RFC3339 date in loc. An empty value
// means today. Invalid input is rejected unless the policy is use_today.
func ParseTargetDate(raw string, policy DatePolicy, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DateOf(now.In(loc)), nil
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOf(t.In(loc)), nil
	}
	if policy == DatePolicyUseToday {
		return DateOf(now.In(loc)), nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", raw, ErrInvalidDate)
}
