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

// CenterRepository handles database operations for training centers.
type CenterRepository struct {
	db *pgxpool.Pool
}

// NewCenterRepository creates a new center repository
func NewCenterRepository(db *pgxpool.Pool) *CenterRepository {
	return &CenterRepository{db: db}
}

const centerColumns = `id, name, location, district, manager, phone, status, performance, created_at`

func scanCenter(row pgx.Row) (*models.Center, error) {
	var center models.Center
	err := row.Scan(
		&center.ID,
		&center.Name,
		&center.Location,
		&center.District,
		&center.Manager,
		&center.Phone,
		&center.Status,
		&center.Performance,
		&center.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &center, nil
}

// Create inserts a new center.
func (r *CenterRepository) Create(ctx context.Context, center *models.Center) error {
	query := `
		INSERT INTO centers (name, location, district, manager, phone, status, performance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		center.Name,
		center.Location,
		center.District,
		center.Manager,
		center.Phone,
		center.Status,
		center.Performance,
	).Scan(&center.ID, &center.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCenterAlreadyExists
		}
		return fmt.Errorf("error creating center: %w", err)
	}
	return nil
}

// GetByID retrieves a center by ID within the given scope. Out-of-scope
// centers are reported as not found.
func (r *CenterRepository) GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Center, error) {
	if scope.None {
		return nil, apperrors.ErrCenterNotFound
	}

	conditions, args := scopeConditions(scope, scopeColumns{district: "district", centerID: "id"})
	args = append(args, id)
	conditions = append(conditions, fmt.Sprintf("id = $%d", len(args)))

	query := `SELECT ` + centerColumns + ` FROM centers` + buildWhere(conditions)

	center, err := scanCenter(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCenterNotFound
		}
		return nil, fmt.Errorf("error retrieving center: %w", err)
	}
	return center, nil
}

// List retrieves centers within the given scope, optionally filtered by
// district and status.
func (r *CenterRepository) List(ctx context.Context, scope access.Scope, district, status string, offset, limit int) ([]*models.Center, int64, error) {
	if scope.None {
		return nil, 0, nil
	}

	conditions, args := scopeConditions(scope, scopeColumns{district: "district", centerID: "id"})
	if district != "" {
		args = append(args, district)
		conditions = append(conditions, fmt.Sprintf("district = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := buildWhere(conditions)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM centers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting centers: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM centers%s ORDER BY name LIMIT $%d OFFSET $%d`,
		centerColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing centers: %w", err)
	}
	defer rows.Close()

	var centers []*models.Center
	for rows.Next() {
		center, err := scanCenter(rows)
		if err != nil {
			return nil, 0, err
		}
		centers = append(centers, center)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}

// Update persists mutable center fields.
func (r *CenterRepository) Update(ctx context.Context, center *models.Center) error {
	query := `
		UPDATE centers
		SET name = $1, location = $2, district = $3, manager = $4,
		    phone = $5, status = $6, performance = $7
		WHERE id = $8
	`

	tag, err := r.db.Exec(ctx, query,
		center.Name,
		center.Location,
		center.District,
		center.Manager,
		center.Phone,
		center.Status,
		center.Performance,
		center.ID,
	)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCenterAlreadyExists
		}
		return fmt.Errorf("error updating center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCenterNotFound
	}
	return nil
}

// Delete removes a center.
func (r *CenterRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM centers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting center: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCenterNotFound
	}
	return nil
}
