// Package attendance turns a recognized student into an attendance decision
// using the timetable and the attendance ledger.
package attendance

import (
	"context"
	"time"

	"attendcore/internal/schedule"
)

// MethodFace marks ledger rows created by face recognition.
const MethodFace = "face"

// Record is one attendance ledger row.
type Record struct {
	StudentID int64
	SubjectID int64
	Timestamp time.Time
	Present   bool
	Method    string
}

// Ledger is the attendance-ledger collaborator. ExistsForDate checks for an
// existing row for the student and subject on the given calendar day.
type Ledger interface {
	ExistsForDate(ctx context.Context, studentID, subjectID int64, day time.Time) (bool, error)
	Insert(ctx context.Context, rec Record) error
}

// SlotSource supplies the student's timetable rows for one weekday, ordered
// by start time. Owned by the school information system.
type SlotSource interface {
	SlotsFor(ctx context.Context, studentID int64, weekday int) ([]schedule.Slot, error)
}

// Decision is the final outcome handed back to the caller after a
// successful recognition.
type Decision struct {
	StudentID   int64     `json:"student_id"`
	SubjectID   int64     `json:"subject_id,omitempty"`
	SubjectName string    `json:"subject_name,omitempty"`
	SubjectSlug string    `json:"subject_slug,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	// Recorded is true when a new ledger row was written.
	Recorded bool `json:"recorded"`
	// AlreadyRecorded is true when a row for this student, subject and day
	// already existed; the call is an idempotent no-op then.
	AlreadyRecorded bool `json:"already_recorded"`
}

// HasSubject reports whether a schedule slot was active at decision time.
func (d Decision) HasSubject() bool {
	return d.SubjectID != 0
}
