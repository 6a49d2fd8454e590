package quiz

import (
	"fmt"
	"sort"
	"time"
)

// Availability classifies a quiz relative to its window at a point in
// time. Absent bounds are unbounded; a quiz with neither bound set is
// Unknown, matching the listing's "Availability unknown" label.
type Availability string

const (
	NotYetOpen Availability = "not_yet_open"
	Closed     Availability = "closed"
	Available  Availability = "available"
	Unknown    Availability = "unknown"
)

// Resolve is a pure function of (quiz, now).
func Resolve(z Quiz, now time.Time) Availability {
	from, until := z.AvailableFrom, z.AvailableUntil
	if from != nil && now.Before(*from) {
		return NotYetOpen
	}
	if until != nil && now.After(*until) {
		return Closed
	}
	if from == nil && until == nil {
		return Unknown
	}
	return Available
}

// DaysUntilOpen reports the whole-day count until AvailableFrom,
// rounded up. Zero if the quiz has no future open date.
func DaysUntilOpen(z Quiz, now time.Time) int {
	if z.AvailableFrom == nil || !now.Before(*z.AvailableFrom) {
		return 0
	}
	d := z.AvailableFrom.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// VisibleTo reports whether a role may see the quiz at all. Unpublished
// quizzes are faculty-only.
func VisibleTo(z Quiz, role string) bool {
	if z.Published {
		return true
	}
	return role == RoleFaculty || role == RoleAdmin
}

// Roles as carried in JWT claims and the RBAC policy.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// CheckEntry gates the student take flow: the quiz must be published and
// inside its availability window, and the student must have attempts
// remaining. Faculty bypass happens at the caller (preview/edit only,
// never the take flow itself).
func CheckEntry(z Quiz, now time.Time, remaining int) error {
	if !z.Published {
		return &IneligibleError{Reason: "quiz is not published"}
	}
	switch Resolve(z, now) {
	case NotYetOpen:
		days := DaysUntilOpen(z, now)
		return &IneligibleError{
			Reason:        fmt.Sprintf("this quiz will open in %d day(s)", days),
			DaysUntilOpen: days,
		}
	case Closed:
		return &IneligibleError{Reason: "quiz is closed"}
	}
	if remaining <= 0 {
		return &IneligibleError{Reason: "no attempts remaining"}
	}
	return nil
}

// SortByAvailableFrom orders a course's quizzes ascending by open date,
// with undated quizzes first (treated as epoch).
func SortByAvailableFrom(list []Quiz) {
	key := func(z Quiz) int64 {
		if z.AvailableFrom == nil {
			return 0
		}
		return z.AvailableFrom.UnixMilli()
	}
	sort.SliceStable(list, func(i, j int) bool { return key(list[i]) < key(list[j]) })
}

// FilterVisible drops quizzes the role may not see, preserving order.
func FilterVisible(list []Quiz, role string) []Quiz {
	out := make([]Quiz, 0, len(list))
	for _, z := range list {
		if VisibleTo(z, role) {
			out = append(out, z)
		}
	}
	return out
}
