package attendance

import (
	"context"
	"fmt"
	"log"
	"time"

	"attendcore/internal/metrics"
	"attendcore/internal/schedule"
)

// Recorder produces attendance decisions for recognized students.
type Recorder struct {
	slots  SlotSource
	ledger Ledger
}

// NewRecorder creates a recorder over the timetable source and the ledger.
func NewRecorder(slots SlotSource, ledger Ledger) *Recorder {
	return &Recorder{slots: slots, ledger: ledger}
}

// ResolveAndDecide resolves the active schedule slot for the student at now
// and produces the attendance decision. With no active slot the decision has
// no subject ("no matching class") and nothing is written. With an active
// slot the ledger is checked for an existing row for that student, subject
// and calendar day: if one exists the decision is marked already-recorded
// and nothing is written, otherwise a new present row is inserted. Running
// it twice for the same slot and day never creates a duplicate.
func (r *Recorder) ResolveAndDecide(ctx context.Context, studentID int64, now time.Time) (Decision, error) {
	weekday := schedule.Weekday(now)

	slots, err := r.slots.SlotsFor(ctx, studentID, weekday)
	if err != nil {
		return Decision{}, fmt.Errorf("loading timetable for student %d: %w", studentID, err)
	}

	slot := schedule.Resolve(studentID, weekday, schedule.Clock(now), slots)
	if slot == nil {
		log.Printf("no matching class for student %d at %s", studentID, schedule.Clock(now))
		return Decision{StudentID: studentID, Timestamp: now}, nil
	}

	dec := Decision{
		StudentID:   studentID,
		SubjectID:   slot.SubjectID,
		SubjectName: slot.SubjectName,
		SubjectSlug: schedule.SubjectSlug(slot.SubjectName),
		Timestamp:   now,
	}

	exists, err := r.ledger.ExistsForDate(ctx, studentID, slot.SubjectID, now)
	if err != nil {
		return Decision{}, fmt.Errorf("checking attendance for student %d: %w", studentID, err)
	}
	if exists {
		dec.AlreadyRecorded = true
		return dec, nil
	}

	err = r.ledger.Insert(ctx, Record{
		StudentID: studentID,
		SubjectID: slot.SubjectID,
		Timestamp: now,
		Present:   true,
		Method:    MethodFace,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("recording attendance for student %d: %w", studentID, err)
	}

	metrics.AttendanceRecorded.Inc()
	dec.Recorded = true
	return dec, nil
}
