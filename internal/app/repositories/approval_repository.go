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
)

// ApprovalRepository handles database operations for course approval
// requests.
type ApprovalRepository struct {
	db *pgxpool.Pool
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *pgxpool.Pool) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

const approvalColumns = `a.id, a.course_id, a.requested_by, a.approved_by, a.status, a.comments, a.decided_at, a.created_at`

func scanApproval(row pgx.Row) (*models.CourseApproval, error) {
	var approval models.CourseApproval
	err := row.Scan(
		&approval.ID,
		&approval.CourseID,
		&approval.RequestedBy,
		&approval.ApprovedBy,
		&approval.Status,
		&approval.Comments,
		&approval.DecidedAt,
		&approval.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

// Create records a new approval request for a course.
func (r *ApprovalRepository) Create(ctx context.Context, approval *models.CourseApproval) error {
	query := `
		INSERT INTO course_approvals (course_id, requested_by, status, comments)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		approval.CourseID,
		approval.RequestedBy,
		approval.Status,
		approval.Comments,
	).Scan(&approval.ID, &approval.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating approval request: %w", err)
	}
	return nil
}

// GetByID retrieves an approval with its course, joined so district
// scoping can be applied against the course row.
func (r *ApprovalRepository) GetByID(ctx context.Context, id int64) (*models.CourseApproval, error) {
	query := `SELECT ` + approvalColumns + `, ` + courseColumns + `
		FROM course_approvals a
		JOIN courses c ON c.id = a.course_id
		WHERE a.id = $1`

	var approval models.CourseApproval
	var course models.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&approval.ID,
		&approval.CourseID,
		&approval.RequestedBy,
		&approval.ApprovedBy,
		&approval.Status,
		&approval.Comments,
		&approval.DecidedAt,
		&approval.CreatedAt,
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApprovalNotFound
		}
		return nil, fmt.Errorf("error retrieving approval: %w", err)
	}
	approval.Course = &course
	return &approval, nil
}

// List retrieves approvals in the given scope, optionally filtered by
// status, newest first. Scoping follows the underlying course's district;
// training officers see the requests they submitted.
func (r *ApprovalRepository) List(ctx context.Context, scope access.Scope, status string, offset, limit int) ([]*models.CourseApproval, int64, error) {
	if scope.None {
		return nil, 0, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{
		district:   "c.district",
		recordedBy: "a.requested_by",
	})
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)))
	}
	where := buildWhere(conditions)

	var total int64
	countQuery := `SELECT COUNT(*) FROM course_approvals a JOIN courses c ON c.id = a.course_id` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting approvals: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM course_approvals a JOIN courses c ON c.id = a.course_id%s
		ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`,
		approvalColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*models.CourseApproval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, 0, err
		}
		approvals = append(approvals, approval)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return approvals, total, nil
}

// Decide records a decision on a pending approval request.
func (r *ApprovalRepository) Decide(ctx context.Context, approvalID, decidedBy int64, status models.ApprovalStatus, comments string) error {
	query := `
		UPDATE course_approvals
		SET status = $1, approved_by = $2, comments = $3, decided_at = NOW()
		WHERE id = $4 AND status = $5
	`

	tag, err := r.db.Exec(ctx, query, status, decidedBy, comments, approvalID, models.ApprovalPending)
	if err != nil {
		return fmt.Errorf("error deciding approval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApprovalNotFound
	}
	return nil
}

// HasPending reports whether a course already has an undecided request.
func (r *ApprovalRepository) HasPending(ctx context.Context, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_approvals WHERE course_id = $1 AND status = $2)`,
		courseID, models.ApprovalPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking pending approvals: %w", err)
	}
	return exists, nil
}
