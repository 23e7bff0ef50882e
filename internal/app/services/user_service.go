package services

import (
	"context"
	"strings"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/auth"
	"github.com/tharindu/vtcms/internal/pkg/validation"
)

// UserService defines the interface for user account management
type UserService interface {
	Create(ctx context.Context, actor access.Actor, req *dto.CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, actor access.Actor, id int64) (*models.User, error)
	List(ctx context.Context, actor access.Actor, role string, offset, limit int) ([]*models.User, int64, error)
	ListInstructors(ctx context.Context, actor access.Actor) ([]*models.User, error)
	Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor access.Actor, id int64) error
}

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, scope access.Scope, role string, offset, limit int) ([]*models.User, int64, error)
	ListInstructorsByDistrict(ctx context.Context, district string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type userTokenRevoker interface {
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users  userStore
	tokens userTokenRevoker
}

// NewUserService creates a new user service instance
func NewUserService(users userStore, tokens userTokenRevoker) UserService {
	return &userServiceImpl{users: users, tokens: tokens}
}

// Create provisions a new account. District managers may only create
// accounts inside their own district and never other district managers.
func (s *userServiceImpl) Create(ctx context.Context, actor access.Actor, req *dto.CreateUserRequest) (*models.User, error) {
	role := models.RoleType(req.Role)
	if !models.IsValidRole(role) {
		return nil, apperrors.NewValidationError("roleType", "unknown role")
	}
	if err := access.CanCreateUserRole(actor, role); err != nil {
		return nil, err
	}
	if !validation.IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError("email", "invalid email address")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.NewValidationError("password", "password must be at least 8 characters")
	}

	district := strings.TrimSpace(req.District)
	if actor.Role == models.RoleDistrictManager {
		district = actor.District
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleType:  role,
		District:  district,
		CenterID:  req.CenterID,
		IsActive:  true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves an account visible to the actor.
func (s *userServiceImpl) GetByID(ctx context.Context, actor access.Actor, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scope := access.ScopeFor(actor, access.ResourceUser)
	if scope.None {
		return nil, apperrors.ErrUserNotFound
	}
	if scope.District != "" && user.District != scope.District && user.ID != actor.ID {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// List retrieves accounts in the actor's scope.
func (s *userServiceImpl) List(ctx context.Context, actor access.Actor, role string, offset, limit int) ([]*models.User, int64, error) {
	scope := access.ScopeFor(actor, access.ResourceUser)
	return s.users.List(ctx, scope, role, offset, limit)
}

// ListInstructors returns active instructors the actor can assign. For
// district-scoped roles the list is limited to the home district.
func (s *userServiceImpl) ListInstructors(ctx context.Context, actor access.Actor) ([]*models.User, error) {
	scope := access.ScopeFor(actor, access.ResourceUser)
	if scope.None {
		return nil, nil
	}
	return s.users.ListInstructorsByDistrict(ctx, scope.District)
}

// Update modifies an account in the actor's scope. Deactivating an
// account also revokes its refresh tokens.
func (s *userServiceImpl) Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, access.ResourceUser, access.Target{District: user.District}); err != nil {
		return nil, err
	}

	if req.Email != nil {
		if !validation.IsValidEmail(*req.Email) {
			return nil, apperrors.NewValidationError("email", "invalid email address")
		}
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Role != nil {
		role := models.RoleType(*req.Role)
		if !models.IsValidRole(role) {
			return nil, apperrors.NewValidationError("roleType", "unknown role")
		}
		if err := access.CanCreateUserRole(actor, role); err != nil {
			return nil, err
		}
		user.RoleType = role
	}
	if req.District != nil && actor.Role != models.RoleDistrictManager {
		user.District = *req.District
	}
	if req.CenterID != nil {
		user.CenterID = req.CenterID
	}

	deactivated := false
	if req.IsActive != nil {
		deactivated = user.IsActive && !*req.IsActive
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if deactivated {
		_ = s.tokens.RevokeAllUserTokens(ctx, user.ID)
	}
	return user, nil
}

// Delete removes an account in the actor's scope. Actors cannot delete
// themselves.
func (s *userServiceImpl) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if id == actor.ID {
		return apperrors.NewBadRequestError("you cannot delete your own account")
	}

	user, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := access.CanModify(actor, access.ResourceUser, access.Target{District: user.District}); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.tokens.RevokeAllUserTokens(ctx, id)
	return nil
}
