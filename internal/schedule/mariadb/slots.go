package mariadb

import (
	"context"
	"fmt"
	"log"

	"attendcore/internal/schedule"
)

// SlotRepository loads timetable slots from the school system's tables.
type SlotRepository struct {
	pool *Pool
}

// NewSlotRepository creates a new repository.
func NewSlotRepository(pool *Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// SlotsFor returns the student's slots for one weekday, ordered by start
// time. Rows with malformed time windows are skipped with a warning rather
// than failing the whole lookup.
func (r *SlotRepository) SlotsFor(ctx context.Context, studentID int64, weekday int) ([]schedule.Slot, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT st.student_id, st.subject_id, s.subject_name, st.weekday, st.start_time, st.end_time
		FROM student_timetables st
		JOIN subjects s ON s.id = st.subject_id
		WHERE st.student_id = ? AND st.weekday = ?
		ORDER BY st.start_time
	`, studentID, weekday)
	if err != nil {
		return nil, fmt.Errorf("query timetable: %w", err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		var slot schedule.Slot
		if err := rows.Scan(&slot.StudentID, &slot.SubjectID, &slot.SubjectName, &slot.Weekday, &slot.Start, &slot.End); err != nil {
			return nil, fmt.Errorf("scan timetable row: %w", err)
		}
		if schedule.ParseClock(slot.Start) != nil || schedule.ParseClock(slot.End) != nil {
			log.Printf("warning: skipping timetable row with bad window %q-%q for student %d", slot.Start, slot.End, studentID)
			continue
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timetable rows: %w", err)
	}
	return slots, nil
}
