package services

import (
	"context"
	"strings"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

// CenterService defines the interface for training center operations
type CenterService interface {
	Create(ctx context.Context, actor access.Actor, req *dto.CreateCenterRequest) (*models.Center, error)
	GetByID(ctx context.Context, actor access.Actor, id int64) (*models.Center, error)
	List(ctx context.Context, actor access.Actor, district, status string, offset, limit int) ([]*models.Center, int64, error)
	Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateCenterRequest) (*models.Center, error)
	Delete(ctx context.Context, actor access.Actor, id int64) error
}

type centerStore interface {
	Create(ctx context.Context, center *models.Center) error
	GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Center, error)
	List(ctx context.Context, scope access.Scope, district, status string, offset, limit int) ([]*models.Center, int64, error)
	Update(ctx context.Context, center *models.Center) error
	Delete(ctx context.Context, id int64) error
}

// centerServiceImpl implements the CenterService interface
type centerServiceImpl struct {
	centers centerStore
}

// NewCenterService creates a new center service instance
func NewCenterService(centers centerStore) CenterService {
	return &centerServiceImpl{centers: centers}
}

// Create registers a new training center. District managers create
// centers in their own district only.
func (s *centerServiceImpl) Create(ctx context.Context, actor access.Actor, req *dto.CreateCenterRequest) (*models.Center, error) {
	if err := access.CanCreate(actor, access.ResourceCenter); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}

	district, err := access.CreateDistrict(actor, access.ResourceCenter, req.District)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	center := &models.Center{
		Name:     strings.TrimSpace(req.Name),
		Location: req.Location,
		District: district,
		Manager:  req.Manager,
		Phone:    req.Phone,
		Status:   status,
	}

	if err := s.centers.Create(ctx, center); err != nil {
		return nil, err
	}
	return center, nil
}

// GetByID retrieves a center in the actor's scope.
func (s *centerServiceImpl) GetByID(ctx context.Context, actor access.Actor, id int64) (*models.Center, error) {
	scope := access.ScopeFor(actor, access.ResourceCenter)
	return s.centers.GetByID(ctx, scope, id)
}

// List retrieves centers in the actor's scope.
func (s *centerServiceImpl) List(ctx context.Context, actor access.Actor, district, status string, offset, limit int) ([]*models.Center, int64, error) {
	scope := access.ScopeFor(actor, access.ResourceCenter)
	return s.centers.List(ctx, scope, district, status, offset, limit)
}

// Update modifies a center in the actor's scope.
func (s *centerServiceImpl) Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateCenterRequest) (*models.Center, error) {
	center, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, access.ResourceCenter, access.Target{District: center.District}); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		center.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		center.Location = *req.Location
	}
	if req.Manager != nil {
		center.Manager = *req.Manager
	}
	if req.Phone != nil {
		center.Phone = *req.Phone
	}
	if req.Status != nil {
		center.Status = *req.Status
	}
	if req.Performance != nil {
		center.Performance = *req.Performance
	}

	if err := s.centers.Update(ctx, center); err != nil {
		return nil, err
	}
	return center, nil
}

// Delete removes a center in the actor's scope.
func (s *centerServiceImpl) Delete(ctx context.Context, actor access.Actor, id int64) error {
	center, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := access.CanModify(actor, access.ResourceCenter, access.Target{District: center.District}); err != nil {
		return err
	}
	return s.centers.Delete(ctx, id)
}
