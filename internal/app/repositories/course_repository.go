package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/dberrors"
)

// CourseRepository handles database operations for courses.
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `c.id, c.name, c.code, c.description, c.category, c.duration, c.schedule,
	c.district, c.center_id, c.instructor_id, c.status, c.progress, c.created_at, c.updated_at`

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Code,
		&course.Description,
		&course.Category,
		&course.Duration,
		&course.Schedule,
		&course.District,
		&course.CenterID,
		&course.InstructorID,
		&course.Status,
		&course.Progress,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (name, code, description, category, duration, schedule, district, center_id, instructor_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		course.Name,
		course.Code,
		course.Description,
		course.Category,
		course.Duration,
		course.Schedule,
		course.District,
		course.CenterID,
		course.InstructorID,
		course.Status,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCourseCodeExists
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// GetByID retrieves a course by ID within the given scope, with its
// student count. Out-of-scope courses are reported as not found.
func (r *CourseRepository) GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Course, error) {
	if scope.None {
		return nil, apperrors.ErrCourseNotFound
	}

	conditions, args := scopeConditions(scope, scopeColumns{
		district:   "c.district",
		instructor: "c.instructor_id",
		centerID:   "c.center_id",
	})
	args = append(args, id)
	conditions = append(conditions, fmt.Sprintf("c.id = $%d", len(args)))

	query := `SELECT ` + courseColumns + `,
		(SELECT COUNT(*) FROM students s WHERE s.course_id = c.id) AS student_count
		FROM courses c` + buildWhere(conditions)

	var course models.Course
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&course.ID,
		&course.Name,
		&course.Code,
		&course.Description,
		&course.Category,
		&course.Duration,
		&course.Schedule,
		&course.District,
		&course.CenterID,
		&course.InstructorID,
		&course.Status,
		&course.Progress,
		&course.CreatedAt,
		&course.UpdatedAt,
		&course.StudentCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return &course, nil
}

// List retrieves courses within the given scope with optional filters.
func (r *CourseRepository) List(ctx context.Context, scope access.Scope, district, status, category string, offset, limit int) ([]*models.Course, int64, error) {
	if scope.None {
		return nil, 0, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{
		district:   "c.district",
		instructor: "c.instructor_id",
		centerID:   "c.center_id",
	})
	if district != "" {
		args = append(args, district)
		conditions = append(conditions, fmt.Sprintf("c.district = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if category != "" {
		args = append(args, category)
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)))
	}
	where := buildWhere(conditions)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM courses c%s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`,
		courseColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// ListAvailable returns approved courses without an instructor, optionally
// restricted to one district. These are the courses open for claiming.
func (r *CourseRepository) ListAvailable(ctx context.Context, district string, offset, limit int) ([]*models.Course, int64, error) {
	conditions := []string{"c.status = $1", "c.instructor_id IS NULL"}
	args := []interface{}{models.CourseApproved}
	if district != "" {
		args = append(args, district)
		conditions = append(conditions, fmt.Sprintf("c.district = $%d", len(args)))
	}
	where := buildWhere(conditions)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting available courses: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM courses c%s ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d`,
		courseColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing available courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// Update persists mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET name = $1, code = $2, description = $3, category = $4, duration = $5,
		    schedule = $6, district = $7, center_id = $8, status = $9,
		    progress = $10, updated_at = NOW()
		WHERE id = $11
	`

	tag, err := r.db.Exec(ctx, query,
		course.Name,
		course.Code,
		course.Description,
		course.Category,
		course.Duration,
		course.Schedule,
		course.District,
		course.CenterID,
		course.Status,
		course.Progress,
		course.ID,
	)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCourseCodeExists
		}
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// UpdateStatus transitions a course's lifecycle status.
func (r *CourseRepository) UpdateStatus(ctx context.Context, courseID int64, status models.CourseStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2`, status, courseID)
	if err != nil {
		return fmt.Errorf("error updating course status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// SetInstructor attaches or detaches an instructor, also applying the
// resulting status.
func (r *CourseRepository) SetInstructor(ctx context.Context, courseID int64, instructorID *int64, status models.CourseStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE courses SET instructor_id = $1, status = $2, updated_at = NOW() WHERE id = $3`,
		instructorID, status, courseID)
	if err != nil {
		return fmt.Errorf("error assigning instructor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Claim assigns a course to an instructor and activates it, but only if
// the course is still approved and unassigned. The guard in the WHERE
// clause closes the race between two instructors claiming at once.
func (r *CourseRepository) Claim(ctx context.Context, courseID, instructorID int64) error {
	query := `
		UPDATE courses
		SET instructor_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND instructor_id IS NULL
	`

	tag, err := r.db.Exec(ctx, query, instructorID, models.CourseActive, courseID, models.CourseApproved)
	if err != nil {
		return fmt.Errorf("error claiming course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseAlreadyAssigned
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
