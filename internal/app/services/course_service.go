package services

import (
	"context"
	"strings"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/logger"
)

// ApprovalAction names a decision on a pending approval request.
type ApprovalAction string

const (
	ActionApprove        ApprovalAction = "approve"
	ActionReject         ApprovalAction = "reject"
	ActionRequestChanges ApprovalAction = "request_changes"
)

// CourseService defines the interface for course operations
type CourseService interface {
	Create(ctx context.Context, actor access.Actor, req *dto.CreateCourseRequest) (*models.Course, error)
	GetByID(ctx context.Context, actor access.Actor, id int64) (*models.Course, error)
	List(ctx context.Context, actor access.Actor, district, status, category string, offset, limit int) ([]*models.Course, int64, error)
	ListAvailable(ctx context.Context, actor access.Actor, offset, limit int) ([]*models.Course, int64, error)
	Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor access.Actor, id int64) error
	Claim(ctx context.Context, actor access.Actor, courseID int64) (*models.Course, error)
	AssignInstructor(ctx context.Context, actor access.Actor, courseID, instructorID int64) (*models.Course, error)
	ListApprovals(ctx context.Context, actor access.Actor, status string, offset, limit int) ([]*models.CourseApproval, int64, error)
	DecideApproval(ctx context.Context, actor access.Actor, approvalID int64, action ApprovalAction, comments string) (*models.CourseApproval, error)
}

type courseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Course, error)
	List(ctx context.Context, scope access.Scope, district, status, category string, offset, limit int) ([]*models.Course, int64, error)
	ListAvailable(ctx context.Context, district string, offset, limit int) ([]*models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, courseID int64, status models.CourseStatus) error
	SetInstructor(ctx context.Context, courseID int64, instructorID *int64, status models.CourseStatus) error
	Claim(ctx context.Context, courseID, instructorID int64) error
	Delete(ctx context.Context, id int64) error
}

type approvalStore interface {
	Create(ctx context.Context, approval *models.CourseApproval) error
	GetByID(ctx context.Context, id int64) (*models.CourseApproval, error)
	List(ctx context.Context, scope access.Scope, status string, offset, limit int) ([]*models.CourseApproval, int64, error)
	Decide(ctx context.Context, approvalID, decidedBy int64, status models.ApprovalStatus, comments string) error
	HasPending(ctx context.Context, courseID int64) (bool, error)
}

type instructorLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courses   courseStore
	approvals approvalStore
	users     instructorLookup
}

// NewCourseService creates a new course service instance
func NewCourseService(courses courseStore, approvals approvalStore, users instructorLookup) CourseService {
	return &courseServiceImpl{courses: courses, approvals: approvals, users: users}
}

// Create registers a new course. Training officers create courses in
// Pending status with an approval request attached; managerial roles
// create them already approved.
func (s *courseServiceImpl) Create(ctx context.Context, actor access.Actor, req *dto.CreateCourseRequest) (*models.Course, error) {
	if err := access.CanCreate(actor, access.ResourceCourse); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("name", "name cannot be empty")
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, apperrors.NewValidationError("code", "code cannot be empty")
	}

	district, err := access.CreateDistrict(actor, access.ResourceCourse, req.District)
	if err != nil {
		return nil, err
	}

	status := models.CourseApproved
	if actor.Role == models.RoleTrainingOfficer || actor.Role == models.RoleDataEntry {
		status = models.CoursePending
	}

	course := &models.Course{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: req.Description,
		Category:    req.Category,
		Duration:    req.Duration,
		Schedule:    req.Schedule,
		District:    district,
		CenterID:    req.CenterID,
		Status:      status,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	if status == models.CoursePending {
		approval := &models.CourseApproval{
			CourseID:    course.ID,
			RequestedBy: actor.ID,
			Status:      models.ApprovalPending,
		}
		if err := s.approvals.Create(ctx, approval); err != nil {
			logger.Error().Err(err).Int64("courseID", course.ID).Msg("Failed to create approval request")
		}
	}

	return course, nil
}

// GetByID retrieves a course in the actor's scope.
func (s *courseServiceImpl) GetByID(ctx context.Context, actor access.Actor, id int64) (*models.Course, error) {
	scope := access.ScopeFor(actor, access.ResourceCourse)
	return s.courses.GetByID(ctx, scope, id)
}

// List retrieves courses in the actor's scope.
func (s *courseServiceImpl) List(ctx context.Context, actor access.Actor, district, status, category string, offset, limit int) ([]*models.Course, int64, error) {
	scope := access.ScopeFor(actor, access.ResourceCourse)
	return s.courses.List(ctx, scope, district, status, category, offset, limit)
}

// ListAvailable returns approved courses with no instructor attached, in
// the actor's district. This is the pool an instructor claims from; their
// normal list scope only shows courses already assigned to them.
func (s *courseServiceImpl) ListAvailable(ctx context.Context, actor access.Actor, offset, limit int) ([]*models.Course, int64, error) {
	if actor.Role != models.RoleInstructor {
		return nil, 0, apperrors.NewForbiddenError("only instructors can browse claimable courses")
	}
	return s.courses.ListAvailable(ctx, actor.District, offset, limit)
}

// Update modifies a course. Training officers may only touch their own
// district's pending courses.
func (s *courseServiceImpl) Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, access.ResourceCourse, access.Target{
		District:     course.District,
		CourseStatus: course.Status,
	}); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.Schedule != nil {
		course.Schedule = *req.Schedule
	}
	if req.CenterID != nil {
		course.CenterID = req.CenterID
	}
	if req.Progress != nil {
		course.Progress = *req.Progress
	}
	if req.Status != nil {
		switch actor.Role {
		case models.RoleAdmin, models.RoleHeadOffice, models.RoleDistrictManager:
			course.Status = models.CourseStatus(*req.Status)
		default:
			return nil, apperrors.NewForbiddenError("only managerial roles can change course status directly")
		}
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	// A rework after a changes-requested decision re-enters the approval
	// queue. Managerial edits and courses with a request still open do not.
	if course.Status == models.CoursePending &&
		(actor.Role == models.RoleTrainingOfficer || actor.Role == models.RoleDataEntry) {
		pending, err := s.approvals.HasPending(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		if !pending {
			approval := &models.CourseApproval{
				CourseID:    course.ID,
				RequestedBy: actor.ID,
				Status:      models.ApprovalPending,
			}
			if err := s.approvals.Create(ctx, approval); err != nil {
				logger.Error().Err(err).Int64("courseID", course.ID).Msg("Failed to create approval request")
			}
		}
	}
	return course, nil
}

// Delete removes a course under the same rules as Update.
func (s *courseServiceImpl) Delete(ctx context.Context, actor access.Actor, id int64) error {
	course, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := access.CanModify(actor, access.ResourceCourse, access.Target{
		District:     course.District,
		CourseStatus: course.Status,
	}); err != nil {
		return err
	}
	return s.courses.Delete(ctx, id)
}

// Claim lets an instructor take an approved, unassigned course in their
// district. The course becomes active and assigned to them. Checks run in
// a fixed order so callers get the most specific failure.
func (s *courseServiceImpl) Claim(ctx context.Context, actor access.Actor, courseID int64) (*models.Course, error) {
	// Claiming reads the course without instructor scoping: the course is
	// not yet theirs.
	course, err := s.courses.GetByID(ctx, access.Scope{All: true}, courseID)
	if err != nil {
		return nil, err
	}

	if err := access.CanClaimCourse(actor, course); err != nil {
		return nil, err
	}

	if err := s.courses.Claim(ctx, courseID, actor.ID); err != nil {
		return nil, err
	}

	course.InstructorID = &actor.ID
	course.Status = models.CourseActive
	return course, nil
}

// AssignInstructor lets a managerial role attach an instructor to a
// course in their scope. The instructor must belong to the course's
// district.
func (s *courseServiceImpl) AssignInstructor(ctx context.Context, actor access.Actor, courseID, instructorID int64) (*models.Course, error) {
	course, err := s.GetByID(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, access.ResourceCourse, access.Target{
		District:     course.District,
		CourseStatus: course.Status,
	}); err != nil {
		return nil, err
	}

	instructor, err := s.users.GetByID(ctx, instructorID)
	if err != nil {
		return nil, apperrors.ErrInstructorNotFound
	}
	if instructor.RoleType != models.RoleInstructor {
		return nil, apperrors.NewBadRequestError("user is not an instructor")
	}
	if instructor.District != course.District {
		return nil, apperrors.NewBadRequestError("instructor belongs to a different district")
	}

	course.InstructorID = &instructorID
	if course.Status == models.CourseApproved {
		course.Status = models.CourseActive
	}
	if err := s.courses.SetInstructor(ctx, courseID, &instructorID, course.Status); err != nil {
		return nil, err
	}
	return course, nil
}

// ListApprovals retrieves approval requests in the actor's scope.
func (s *courseServiceImpl) ListApprovals(ctx context.Context, actor access.Actor, status string, offset, limit int) ([]*models.CourseApproval, int64, error) {
	scope := access.ScopeFor(actor, access.ResourceApproval)
	return s.approvals.List(ctx, scope, status, offset, limit)
}

// DecideApproval records a decision on a pending request. District
// managers decide for their own district; admin and head office decide
// anywhere. Approving or rejecting moves the course status with it, while
// requesting changes leaves the course pending for the officer to rework.
func (s *courseServiceImpl) DecideApproval(ctx context.Context, actor access.Actor, approvalID int64, action ApprovalAction, comments string) (*models.CourseApproval, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleHeadOffice && actor.Role != models.RoleDistrictManager {
		return nil, apperrors.NewForbiddenError("only district managers can decide course approvals")
	}

	approval, err := s.approvals.GetByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleDistrictManager && approval.Course.District != actor.District {
		return nil, apperrors.NewForbiddenError("can only decide approvals in your district")
	}
	if approval.Status != models.ApprovalPending {
		return nil, apperrors.NewBadRequestError("approval request has already been decided")
	}

	var approvalStatus models.ApprovalStatus
	var courseStatus models.CourseStatus
	switch action {
	case ActionApprove:
		approvalStatus, courseStatus = models.ApprovalApproved, models.CourseApproved
	case ActionReject:
		approvalStatus, courseStatus = models.ApprovalRejected, models.CourseRejected
	case ActionRequestChanges:
		approvalStatus, courseStatus = models.ApprovalChangesRequested, models.CoursePending
	default:
		return nil, apperrors.NewValidationError("action", "unknown approval action")
	}

	if err := s.approvals.Decide(ctx, approvalID, actor.ID, approvalStatus, comments); err != nil {
		return nil, err
	}
	if courseStatus != approval.Course.Status {
		if err := s.courses.UpdateStatus(ctx, approval.CourseID, courseStatus); err != nil {
			return nil, err
		}
	}

	approval.Status = approvalStatus
	approval.ApprovedBy = &actor.ID
	approval.Comments = comments
	approval.Course.Status = courseStatus
	return approval, nil
}
