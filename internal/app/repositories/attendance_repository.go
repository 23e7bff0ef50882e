package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

// AttendanceRepository handles database operations for attendance rows and
// the per-day summary cache.
type AttendanceRepository struct {
	db *pgxpool.Pool
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `a.id, a.student_id, a.course_id, a.date, a.status, a.check_in_time,
	a.remarks, a.recorded_by, a.created_at, a.updated_at`

func scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var att models.Attendance
	err := row.Scan(
		&att.ID,
		&att.StudentID,
		&att.CourseID,
		&att.Date,
		&att.Status,
		&att.CheckInTime,
		&att.Remarks,
		&att.RecordedBy,
		&att.CreatedAt,
		&att.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Upsert records attendance keyed on (student, course, date). Re-recording
// the same day overwrites status, check-in time, remarks, and recorder
// rather than inserting a second row.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	query := `
		INSERT INTO attendance (student_id, course_id, date, status, check_in_time, remarks, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (student_id, course_id, date) DO UPDATE
		SET status = EXCLUDED.status,
		    check_in_time = EXCLUDED.check_in_time,
		    remarks = EXCLUDED.remarks,
		    recorded_by = EXCLUDED.recorded_by,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		att.StudentID,
		att.CourseID,
		att.Date,
		att.Status,
		att.CheckInTime,
		att.Remarks,
		att.RecordedBy,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error recording attendance: %w", err)
	}
	return nil
}

// GetByID retrieves an attendance row within the given scope. Scoping
// joins through the student for district restrictions.
func (r *AttendanceRepository) GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Attendance, error) {
	if scope.None {
		return nil, apperrors.ErrAttendanceNotFound
	}

	conditions, args := scopeConditions(scope, scopeColumns{
		district:   "s.district",
		recordedBy: "a.recorded_by",
		centerID:   "s.center_id",
	})
	args = append(args, id)
	conditions = append(conditions, fmt.Sprintf("a.id = $%d", len(args)))

	query := `SELECT ` + attendanceColumns + `
		FROM attendance a JOIN students s ON s.id = a.student_id` + buildWhere(conditions)

	att, err := scanAttendance(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance: %w", err)
	}
	return att, nil
}

// List retrieves attendance rows in the scope, optionally filtered by
// course and date, newest day first.
func (r *AttendanceRepository) List(ctx context.Context, scope access.Scope, courseID int64, date *time.Time, offset, limit int) ([]*models.Attendance, int64, error) {
	if scope.None {
		return nil, 0, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{
		district:   "s.district",
		recordedBy: "a.recorded_by",
		centerID:   "s.center_id",
	})
	if courseID != 0 {
		args = append(args, courseID)
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)))
	}
	if date != nil {
		args = append(args, *date)
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", len(args)))
	}
	where := buildWhere(conditions)

	from := ` FROM attendance a JOIN students s ON s.id = a.student_id`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting attendance: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY a.date DESC, a.student_id LIMIT $%d OFFSET $%d`,
		attendanceColumns, from, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// CountsForCourseDate tallies the stored statuses for one course day. The
// roll-up recomputation reads these instead of adjusting counters
// incrementally, so overwrites can never drift the summary.
func (r *AttendanceRepository) CountsForCourseDate(ctx context.Context, courseID int64, date time.Time) (present, absent, late int, err error) {
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'present'),
		COUNT(*) FILTER (WHERE status = 'absent'),
		COUNT(*) FILTER (WHERE status = 'late')
		FROM attendance WHERE course_id = $1 AND date = $2`

	if err = r.db.QueryRow(ctx, query, courseID, date).Scan(&present, &absent, &late); err != nil {
		return 0, 0, 0, fmt.Errorf("error counting attendance statuses: %w", err)
	}
	return present, absent, late, nil
}

// UpsertSummary writes the recomputed roll-up row for a course day.
func (r *AttendanceRepository) UpsertSummary(ctx context.Context, summary *models.AttendanceSummary) error {
	query := `
		INSERT INTO attendance_summary (course_id, date, total_students, present_count, absent_count, late_count, attendance_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (course_id, date) DO UPDATE
		SET total_students = EXCLUDED.total_students,
		    present_count = EXCLUDED.present_count,
		    absent_count = EXCLUDED.absent_count,
		    late_count = EXCLUDED.late_count,
		    attendance_rate = EXCLUDED.attendance_rate,
		    updated_at = NOW()
		RETURNING id, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		summary.CourseID,
		summary.Date,
		summary.TotalStudents,
		summary.PresentCount,
		summary.AbsentCount,
		summary.LateCount,
		summary.AttendanceRate,
	).Scan(&summary.ID, &summary.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error writing attendance summary: %w", err)
	}
	return nil
}

// GetSummary reads the cached roll-up for a course day.
func (r *AttendanceRepository) GetSummary(ctx context.Context, courseID int64, date time.Time) (*models.AttendanceSummary, error) {
	query := `SELECT id, course_id, date, total_students, present_count, absent_count, late_count, attendance_rate, updated_at
		FROM attendance_summary WHERE course_id = $1 AND date = $2`

	var summary models.AttendanceSummary
	err := r.db.QueryRow(ctx, query, courseID, date).Scan(
		&summary.ID,
		&summary.CourseID,
		&summary.Date,
		&summary.TotalStudents,
		&summary.PresentCount,
		&summary.AbsentCount,
		&summary.LateCount,
		&summary.AttendanceRate,
		&summary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("error retrieving attendance summary: %w", err)
	}
	return &summary, nil
}

// ListForDay returns every mark for a course on one date, unpaginated.
// Roster assembly needs the complete set, including marks for students
// since moved off the course.
func (r *AttendanceRepository) ListForDay(ctx context.Context, courseID int64, date time.Time) ([]*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendance a
		WHERE a.course_id = $1 AND a.date = $2
		ORDER BY a.student_id`

	rows, err := r.db.Query(ctx, query, courseID, date)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance for day: %w", err)
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ListSummaries retrieves roll-up rows for a course over a date range,
// oldest first.
func (r *AttendanceRepository) ListSummaries(ctx context.Context, courseID int64, from, to time.Time) ([]*models.AttendanceSummary, error) {
	query := `SELECT id, course_id, date, total_students, present_count, absent_count, late_count, attendance_rate, updated_at
		FROM attendance_summary
		WHERE course_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`

	rows, err := r.db.Query(ctx, query, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*models.AttendanceSummary
	for rows.Next() {
		var summary models.AttendanceSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.CourseID,
			&summary.Date,
			&summary.TotalStudents,
			&summary.PresentCount,
			&summary.AbsentCount,
			&summary.LateCount,
			&summary.AttendanceRate,
			&summary.UpdatedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}
	return summaries, rows.Err()
}

// AverageRate computes the mean cached attendance rate for courses in a
// district, for reporting.
func (r *AttendanceRepository) AverageRate(ctx context.Context, district string) (float64, error) {
	query := `SELECT COALESCE(AVG(asm.attendance_rate), 0)
		FROM attendance_summary asm
		JOIN courses c ON c.id = asm.course_id
		WHERE ($1 = '' OR c.district = $1)`

	var rate float64
	if err := r.db.QueryRow(ctx, query, district).Scan(&rate); err != nil {
		return 0, fmt.Errorf("error computing average attendance rate: %w", err)
	}
	return rate, nil
}
