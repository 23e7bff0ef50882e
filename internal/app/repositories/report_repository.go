package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tharindu/vtcms/internal/app/models"
)

// ReportRepository owns the aggregate queries behind dashboards and
// district reports. An empty district means no district restriction.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// MonthPoint is one month of a trend series, keyed YYYY-MM.
type MonthPoint struct {
	Month string
	Count int64
}

// CenterFigures is one center's aggregate for performance reporting.
type CenterFigures struct {
	CenterName     string
	StudentCount   int64
	CompletedCount int64
}

// CountCenters counts centers, optionally per district.
func (r *ReportRepository) CountCenters(ctx context.Context, district string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM centers WHERE ($1 = '' OR district = $1)`, district).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting centers: %w", err)
	}
	return count, nil
}

// CountCoursesByStatus counts courses with a status, optionally per district.
func (r *ReportRepository) CountCoursesByStatus(ctx context.Context, district string, status models.CourseStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM courses WHERE status = $1 AND ($2 = '' OR district = $2)`,
		status, district).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting courses: %w", err)
	}
	return count, nil
}

// CountUsersByRole counts active users with a role, optionally per district.
func (r *ReportRepository) CountUsersByRole(ctx context.Context, district string, role models.RoleType) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role_type = $1 AND is_active AND ($2 = '' OR district = $2)`,
		role, district).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

// CountPendingApprovals counts undecided approval requests, optionally
// per district of the underlying course.
func (r *ReportRepository) CountPendingApprovals(ctx context.Context, district string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM course_approvals a
		 JOIN courses c ON c.id = a.course_id
		 WHERE a.status = $1 AND ($2 = '' OR c.district = $2)`,
		models.ApprovalPending, district).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting pending approvals: %w", err)
	}
	return count, nil
}

// StudentStatusCounts groups students by enrollment status.
func (r *ReportRepository) StudentStatusCounts(ctx context.Context, district string) (map[string]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT enrollment_status, COUNT(*) FROM students
		 WHERE ($1 = '' OR district = $1) GROUP BY enrollment_status`, district)
	if err != nil {
		return nil, fmt.Errorf("error grouping enrollment statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// TrainingCounts splits students into trained and untrained.
func (r *ReportRepository) TrainingCounts(ctx context.Context, district string) (map[string]int64, error) {
	var trained, untrained int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE training_received),
		        COUNT(*) FILTER (WHERE NOT training_received)
		 FROM students WHERE ($1 = '' OR district = $1)`, district).Scan(&trained, &untrained)
	if err != nil {
		return nil, fmt.Errorf("error counting training figures: %w", err)
	}
	return map[string]int64{"trained": trained, "untrained": untrained}, nil
}

// EnrollmentTrend counts registrations per month over the last n months.
func (r *ReportRepository) EnrollmentTrend(ctx context.Context, district string, months int) ([]MonthPoint, error) {
	query := `SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM students
		WHERE ($1 = '' OR district = $1)
		  AND created_at >= date_trunc('month', NOW()) - ($2 || ' months')::interval
		GROUP BY month ORDER BY month`

	rows, err := r.db.Query(ctx, query, district, months)
	if err != nil {
		return nil, fmt.Errorf("error computing enrollment trend: %w", err)
	}
	defer rows.Close()

	var points []MonthPoint
	for rows.Next() {
		var p MonthPoint
		if err := rows.Scan(&p.Month, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// CenterPerformance aggregates per-center student and completion counts.
func (r *ReportRepository) CenterPerformance(ctx context.Context, district string) ([]CenterFigures, error) {
	query := `SELECT c.name,
		COUNT(s.id),
		COUNT(s.id) FILTER (WHERE s.enrollment_status = 'Completed')
		FROM centers c
		LEFT JOIN students s ON s.center_id = c.id
		WHERE ($1 = '' OR c.district = $1)
		GROUP BY c.name ORDER BY c.name`

	rows, err := r.db.Query(ctx, query, district)
	if err != nil {
		return nil, fmt.Errorf("error computing center performance: %w", err)
	}
	defer rows.Close()

	var figures []CenterFigures
	for rows.Next() {
		var f CenterFigures
		if err := rows.Scan(&f.CenterName, &f.StudentCount, &f.CompletedCount); err != nil {
			return nil, err
		}
		figures = append(figures, f)
	}
	return figures, rows.Err()
}

// CompletionRate is the share of students marked Completed, as a percentage.
func (r *ReportRepository) CompletionRate(ctx context.Context, district string) (float64, error) {
	var total, completed int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE enrollment_status = 'Completed')
		 FROM students WHERE ($1 = '' OR district = $1)`, district).Scan(&total, &completed)
	if err != nil {
		return 0, fmt.Errorf("error computing completion rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(completed) / float64(total) * 100, nil
}
