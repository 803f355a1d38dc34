package entities

import (
	"strings"
	"time"
)

// SortField is the closed set of columns a todo listing can be ordered by.
type SortField string

const (
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByDueDate   SortField = "duedate"
	SortByUpdatedAt SortField = "updatedat"
	SortByCreatedAt SortField = "createdat"
)

// ParseSortField matches s case-insensitively. Unknown or empty values fall
// back to SortByCreatedAt.
func ParseSortField(s string) SortField {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case SortByTitle:
		return SortByTitle
	case SortByPriority:
		return SortByPriority
	case SortByDueDate:
		return SortByDueDate
	case SortByUpdatedAt:
		return SortByUpdatedAt
	default:
		return SortByCreatedAt
	}
}

// Clock supplies the current time to code that derives values from it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock time.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
