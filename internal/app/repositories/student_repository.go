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

// StudentRepository handles database operations for students and their
// qualifications.
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `s.id, s.registration_no, s.district_code, s.course_code, s.batch_year,
	s.student_number, s.registration_year, s.full_name, s.name_with_initials, s.gender,
	s.date_of_birth, s.nic_number, s.address_line, s.district, s.village, s.mobile_no,
	s.email, s.center_id, s.course_id, s.enrollment_date, s.enrollment_status,
	s.training_received, s.created_by, s.created_at, s.updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID,
		&s.RegistrationNo,
		&s.DistrictCode,
		&s.CourseCode,
		&s.BatchYear,
		&s.StudentNumber,
		&s.RegistrationYear,
		&s.FullName,
		&s.NameWithInitials,
		&s.Gender,
		&s.DateOfBirth,
		&s.NICNumber,
		&s.AddressLine,
		&s.District,
		&s.Village,
		&s.MobileNo,
		&s.Email,
		&s.CenterID,
		&s.CourseID,
		&s.EnrollmentDate,
		&s.EnrollmentStatus,
		&s.TrainingReceived,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a student together with their qualifications in one
// transaction. A duplicate registration number surfaces as a conflict the
// caller retries with a recomputed sequence.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO students (registration_no, district_code, course_code, batch_year,
			student_number, registration_year, full_name, name_with_initials, gender,
			date_of_birth, nic_number, address_line, district, village, mobile_no,
			email, center_id, course_id, enrollment_date, enrollment_status,
			training_received, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		student.RegistrationNo,
		student.DistrictCode,
		student.CourseCode,
		student.BatchYear,
		student.StudentNumber,
		student.RegistrationYear,
		student.FullName,
		student.NameWithInitials,
		student.Gender,
		student.DateOfBirth,
		student.NICNumber,
		student.AddressLine,
		student.District,
		student.Village,
		student.MobileNo,
		student.Email,
		student.CenterID,
		student.CourseID,
		student.EnrollmentDate,
		student.EnrollmentStatus,
		student.TrainingReceived,
		student.CreatedBy,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_nic_number_key") {
			return apperrors.ErrNICAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, "students_registration_no_key") {
			return apperrors.ErrRegistrationNoExists
		}
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrRegistrationNoExists
		}
		return fmt.Errorf("error creating student: %w", err)
	}

	for i := range student.Qualifications {
		q := &student.Qualifications[i]
		q.StudentID = student.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO student_qualifications (student_id, type, subject, grade, year)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			q.StudentID, q.Type, q.Subject, q.Grade, q.Year).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("error creating qualification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing student: %w", err)
	}
	return nil
}

// GetByID retrieves a student with qualifications within the given scope.
func (r *StudentRepository) GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Student, error) {
	if scope.None {
		return nil, apperrors.ErrStudentNotFound
	}

	conditions, args := scopeConditions(scope, scopeColumns{district: "s.district", centerID: "s.center_id"})
	args = append(args, id)
	conditions = append(conditions, fmt.Sprintf("s.id = $%d", len(args)))

	query := `SELECT ` + studentColumns + ` FROM students s` + buildWhere(conditions)

	student, err := scanStudent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	if err := r.loadQualifications(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (r *StudentRepository) loadQualifications(ctx context.Context, student *models.Student) error {
	rows, err := r.db.Query(ctx,
		`SELECT id, student_id, type, subject, grade, year
		 FROM student_qualifications WHERE student_id = $1 ORDER BY type, subject`,
		student.ID)
	if err != nil {
		return fmt.Errorf("error loading qualifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q models.Qualification
		if err := rows.Scan(&q.ID, &q.StudentID, &q.Type, &q.Subject, &q.Grade, &q.Year); err != nil {
			return err
		}
		student.Qualifications = append(student.Qualifications, q)
	}
	return rows.Err()
}

// List retrieves students within the given scope with optional filters.
// search matches full name, name with initials, NIC, and registration
// number.
func (r *StudentRepository) List(ctx context.Context, scope access.Scope, district, status, search string, courseID int64, offset, limit int) ([]*models.Student, int64, error) {
	if scope.None {
		return nil, 0, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{district: "s.district", centerID: "s.center_id"})
	if district != "" {
		args = append(args, district)
		conditions = append(conditions, fmt.Sprintf("s.district = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("s.enrollment_status = $%d", len(args)))
	}
	if courseID != 0 {
		args = append(args, courseID)
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(s.full_name ILIKE $%d OR s.name_with_initials ILIKE $%d OR s.nic_number ILIKE $%d OR s.registration_no ILIKE $%d)",
			n, n, n, n))
	}
	where := buildWhere(conditions)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM students s%s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`,
		studentColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// ListByCourse retrieves all students enrolled in a course, for rosters
// and attendance sheets.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s
		WHERE s.course_id = $1 ORDER BY s.registration_no`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing students by course: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// Update persists mutable student fields. Registration segments are never
// touched here; the number assigned at creation is immutable.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET full_name = $1, name_with_initials = $2, gender = $3, date_of_birth = $4,
		    nic_number = $5, address_line = $6, village = $7, mobile_no = $8,
		    email = $9, center_id = $10, course_id = $11, enrollment_date = $12,
		    enrollment_status = $13, training_received = $14, updated_at = NOW()
		WHERE id = $15
	`

	tag, err := r.db.Exec(ctx, query,
		student.FullName,
		student.NameWithInitials,
		student.Gender,
		student.DateOfBirth,
		student.NICNumber,
		student.AddressLine,
		student.Village,
		student.MobileNo,
		student.Email,
		student.CenterID,
		student.CourseID,
		student.EnrollmentDate,
		student.EnrollmentStatus,
		student.TrainingReceived,
		student.ID,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_nic_number_key") {
			return apperrors.ErrNICAlreadyExists
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// ReplaceQualifications swaps a student's stored qualification rows for
// the given set in one transaction.
func (r *StudentRepository) ReplaceQualifications(ctx context.Context, studentID int64, quals []models.Qualification) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM student_qualifications WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("error clearing qualifications: %w", err)
	}
	for _, q := range quals {
		if _, err := tx.Exec(ctx,
			`INSERT INTO student_qualifications (student_id, type, subject, grade, year)
			 VALUES ($1, $2, $3, $4, $5)`,
			studentID, q.Type, q.Subject, q.Grade, q.Year); err != nil {
			return fmt.Errorf("error inserting qualification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing qualifications: %w", err)
	}
	return nil
}

// Delete removes a student and, through cascades, their qualifications and
// attendance rows.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// NICExists checks whether a NIC number is already registered, optionally
// excluding one student for update checks.
func (r *StudentRepository) NICExists(ctx context.Context, nic string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE nic_number = $1 AND id != $2)`,
		nic, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking NIC existence: %w", err)
	}
	return exists, nil
}

// CountPartition counts students sharing a registration partition. It
// backs the sequential segment of the registration number.
func (r *StudentRepository) CountPartition(ctx context.Context, district string, courseID *int64, batchYear string, excludeID int64) (int, error) {
	var count int
	var err error
	if courseID != nil {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM students
			 WHERE district = $1 AND course_id = $2 AND batch_year = $3 AND id != $4`,
			district, *courseID, batchYear, excludeID).Scan(&count)
	} else {
		err = r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM students
			 WHERE district = $1 AND course_id IS NULL AND batch_year = $2 AND id != $3`,
			district, batchYear, excludeID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("error counting partition: %w", err)
	}
	return count, nil
}

// StudentStats aggregates student counts over a scope. Recent counts the
// last 30 days of registrations; CenterDistribution is keyed by center
// name.
type StudentStats struct {
	Total              int64
	Trained            int64
	Enrolled           int64
	Completed          int64
	Pending            int64
	Recent             int64
	CenterDistribution map[string]int64
}

// Stats aggregates student counts for the given scope.
func (r *StudentRepository) Stats(ctx context.Context, scope access.Scope) (*StudentStats, error) {
	stats := &StudentStats{CenterDistribution: map[string]int64{}}
	if scope.None {
		return stats, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{district: "s.district", centerID: "s.center_id"})
	where := buildWhere(conditions)

	query := `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE s.training_received),
		COUNT(*) FILTER (WHERE s.enrollment_status = 'Enrolled'),
		COUNT(*) FILTER (WHERE s.enrollment_status = 'Completed'),
		COUNT(*) FILTER (WHERE s.enrollment_status = 'Pending'),
		COUNT(*) FILTER (WHERE s.created_at >= NOW() - interval '30 days')
		FROM students s` + where

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.Total, &stats.Trained, &stats.Enrolled,
		&stats.Completed, &stats.Pending, &stats.Recent)
	if err != nil {
		return nil, fmt.Errorf("error computing student stats: %w", err)
	}

	distQuery := `SELECT c.name, COUNT(*)
		FROM students s JOIN centers c ON c.id = s.center_id` + where + `
		GROUP BY c.name`

	rows, err := r.db.Query(ctx, distQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("error computing center distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		stats.CenterDistribution[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// MonthlyEnrollments counts students registered per month over the last n
// months within the scope.
func (r *StudentRepository) MonthlyEnrollments(ctx context.Context, scope access.Scope, months int) (map[string]int64, error) {
	if scope.None {
		return map[string]int64{}, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{district: "district", centerID: "center_id"})
	args = append(args, months)
	conditions = append(conditions, fmt.Sprintf("created_at >= NOW() - ($%d || ' months')::interval", len(args)))

	query := `SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM students` + buildWhere(conditions) + `
		GROUP BY month ORDER BY month`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error computing monthly enrollments: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var month string
		var count int64
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		result[month] = count
	}
	return result, rows.Err()
}
