// Package schedule resolves which timetable slot, if any, is active for a
// student at a given weekday and wall-clock time.
package schedule

import (
	"fmt"
	"time"
)

// Slot is one timetable window for a student. Weekday uses the 0 = Monday
// ... 6 = Sunday encoding; Start and End are "HH:MM" wall-clock strings.
// Slots are owned by the school information system and read-only here.
type Slot struct {
	StudentID   int64
	SubjectID   int64
	SubjectName string
	Weekday     int
	Start       string
	End         string
}

// Weekday converts a time.Time to the 0 = Monday encoding used by slots
// (time.Weekday counts from Sunday).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Clock formats t as the "HH:MM" wall-clock string used in slot windows.
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// ParseClock validates a "HH:MM" string. Used when ingesting slots, not
// when resolving; resolution compares the strings directly.
func ParseClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return nil
}

// Resolve returns the first slot (in the caller-supplied order, expected
// pre-sorted by start time) that belongs to the student, falls on the
// weekday and whose window contains clock, inclusive on both ends. Returns
// nil when no slot is active, which is a normal outcome: no class scheduled
// right now.
//
// Overlapping windows are not validated here; the first structurally
// matching slot wins. Overlap handling belongs to the registration layer.
func Resolve(studentID int64, weekday int, clock string, slots []Slot) *Slot {
	for i := range slots {
		s := &slots[i]
		if s.StudentID != studentID || s.Weekday != weekday {
			continue
		}
		// "HH:MM" strings are zero-padded so lexical order is time order.
		if s.Start <= clock && clock <= s.End {
			return s
		}
	}
	return nil
}
