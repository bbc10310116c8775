package postgres

import (
	"context"
	"fmt"
	"time"

	"attendcore/internal/attendance"
)

// AttendanceRepository is the PostgreSQL-backed attendance.Ledger.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// ExistsForDate checks whether an attendance row already exists for the
// student and subject on the given calendar day.
func (r *AttendanceRepository) ExistsForDate(ctx context.Context, studentID, subjectID int64, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM attendance
			WHERE student_id = $1 AND subject_id = $2 AND ts::date = $3::date
		)
	`, studentID, subjectID, day).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendance exists: %w", err)
	}
	return exists, nil
}

// Insert writes a new attendance row.
func (r *AttendanceRepository) Insert(ctx context.Context, rec attendance.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attendance (student_id, subject_id, ts, is_present, method)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.StudentID, rec.SubjectID, rec.Timestamp, rec.Present, rec.Method)
	if err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// CountForDate returns the number of attendance rows for a calendar day.
func (r *AttendanceRepository) CountForDate(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM attendance WHERE ts::date = $1::date", day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}
