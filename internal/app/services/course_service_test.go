package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

type fakeCourseStore struct {
	courses       map[int64]*models.Course
	created       []*models.Course
	claimed       []int64
	statusUpdates map[int64]models.CourseStatus
	claimErr      error
}

func newFakeCourseStore(courses ...*models.Course) *fakeCourseStore {
	store := &fakeCourseStore{
		courses:       map[int64]*models.Course{},
		statusUpdates: map[int64]models.CourseStatus{},
	}
	for _, c := range courses {
		store.courses[c.ID] = c
	}
	return store
}

func (f *fakeCourseStore) Create(_ context.Context, course *models.Course) error {
	course.ID = int64(len(f.courses) + 1)
	f.courses[course.ID] = course
	f.created = append(f.created, course)
	return nil
}

func (f *fakeCourseStore) GetByID(_ context.Context, scope access.Scope, id int64) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	if scope.None {
		return nil, apperrors.ErrCourseNotFound
	}
	if scope.District != "" && course.District != scope.District {
		return nil, apperrors.ErrCourseNotFound
	}
	if scope.Instructor != 0 && (course.InstructorID == nil || *course.InstructorID != scope.Instructor) {
		return nil, apperrors.ErrCourseNotFound
	}
	return course, nil
}

func (f *fakeCourseStore) List(_ context.Context, _ access.Scope, _, _, _ string, _, _ int) ([]*models.Course, int64, error) {
	return nil, 0, nil
}

func (f *fakeCourseStore) ListAvailable(_ context.Context, district string, _, _ int) ([]*models.Course, int64, error) {
	var available []*models.Course
	for _, c := range f.courses {
		if c.Status != models.CourseApproved || c.InstructorID != nil {
			continue
		}
		if district != "" && c.District != district {
			continue
		}
		available = append(available, c)
	}
	return available, int64(len(available)), nil
}

func (f *fakeCourseStore) Update(_ context.Context, course *models.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *fakeCourseStore) UpdateStatus(_ context.Context, courseID int64, status models.CourseStatus) error {
	f.statusUpdates[courseID] = status
	f.courses[courseID].Status = status
	return nil
}

func (f *fakeCourseStore) SetInstructor(_ context.Context, courseID int64, instructorID *int64, status models.CourseStatus) error {
	f.courses[courseID].InstructorID = instructorID
	f.courses[courseID].Status = status
	return nil
}

func (f *fakeCourseStore) Claim(_ context.Context, courseID, instructorID int64) error {
	if f.claimErr != nil {
		return f.claimErr
	}
	f.claimed = append(f.claimed, courseID)
	f.courses[courseID].InstructorID = &instructorID
	f.courses[courseID].Status = models.CourseActive
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, id int64) error {
	delete(f.courses, id)
	return nil
}

type fakeApprovalStore struct {
	approvals map[int64]*models.CourseApproval
	created   []*models.CourseApproval
	decisions map[int64]models.ApprovalStatus
}

func newFakeApprovalStore(approvals ...*models.CourseApproval) *fakeApprovalStore {
	store := &fakeApprovalStore{
		approvals: map[int64]*models.CourseApproval{},
		decisions: map[int64]models.ApprovalStatus{},
	}
	for _, a := range approvals {
		store.approvals[a.ID] = a
	}
	return store
}

func (f *fakeApprovalStore) Create(_ context.Context, approval *models.CourseApproval) error {
	approval.ID = int64(len(f.approvals) + 1)
	f.approvals[approval.ID] = approval
	f.created = append(f.created, approval)
	return nil
}

func (f *fakeApprovalStore) GetByID(_ context.Context, id int64) (*models.CourseApproval, error) {
	approval, ok := f.approvals[id]
	if !ok {
		return nil, apperrors.ErrApprovalNotFound
	}
	return approval, nil
}

func (f *fakeApprovalStore) List(_ context.Context, _ access.Scope, _ string, _, _ int) ([]*models.CourseApproval, int64, error) {
	return nil, 0, nil
}

func (f *fakeApprovalStore) Decide(_ context.Context, approvalID, _ int64, status models.ApprovalStatus, _ string) error {
	f.decisions[approvalID] = status
	return nil
}

func (f *fakeApprovalStore) HasPending(_ context.Context, courseID int64) (bool, error) {
	for _, a := range f.approvals {
		if a.CourseID == courseID && a.Status == models.ApprovalPending {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserLookup struct {
	users map[int64]*models.User
}

func (f *fakeUserLookup) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func TestTrainingOfficerCreatesPendingCourseWithApproval(t *testing.T) {
	courses := newFakeCourseStore()
	approvals := newFakeApprovalStore()
	svc := NewCourseService(courses, approvals, &fakeUserLookup{})
	actor := access.Actor{ID: 4, Role: models.RoleTrainingOfficer, District: "Matara"}

	course, err := svc.Create(context.Background(), actor, &dto.CreateCourseRequest{
		Name: "Basic Welding", Code: "wld-01", District: "Colombo",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if course.Status != models.CoursePending {
		t.Errorf("Status = %s, want Pending", course.Status)
	}
	if course.District != "Matara" {
		t.Errorf("District = %q, want forced Matara", course.District)
	}
	if course.Code != "WLD-01" {
		t.Errorf("Code = %q, want uppercased WLD-01", course.Code)
	}
	if len(approvals.created) != 1 || approvals.created[0].CourseID != course.ID {
		t.Error("no approval request was filed for the pending course")
	}
}

func TestAdminCreatesApprovedCourse(t *testing.T) {
	courses := newFakeCourseStore()
	approvals := newFakeApprovalStore()
	svc := NewCourseService(courses, approvals, &fakeUserLookup{})

	course, err := svc.Create(context.Background(), access.Actor{ID: 1, Role: models.RoleAdmin}, &dto.CreateCourseRequest{
		Name: "Basic Welding", Code: "WLD-01", District: "Galle",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if course.Status != models.CourseApproved {
		t.Errorf("Status = %s, want Approved", course.Status)
	}
	if len(approvals.created) != 0 {
		t.Error("approved course should not file an approval request")
	}
}

func TestClaimCourse(t *testing.T) {
	assigned := int64(99)

	tests := []struct {
		name    string
		course  *models.Course
		actor   access.Actor
		wantErr error
	}{
		{
			name:   "instructor claims approved course in own district",
			course: &models.Course{ID: 1, District: "Matara", Status: models.CourseApproved},
			actor:  access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
		},
		{
			name:    "other district is a permission failure",
			course:  &models.Course{ID: 1, District: "Colombo", Status: models.CourseApproved},
			actor:   access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
			wantErr: apperrors.ErrPermissionDenied,
		},
		{
			name:    "pending course is a request failure",
			course:  &models.Course{ID: 1, District: "Matara", Status: models.CoursePending},
			actor:   access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
			wantErr: apperrors.ErrBadRequest,
		},
		{
			name:    "assigned course is a request failure",
			course:  &models.Course{ID: 1, District: "Matara", Status: models.CourseApproved, InstructorID: &assigned},
			actor:   access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
			wantErr: apperrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses := newFakeCourseStore(tt.course)
			svc := NewCourseService(courses, newFakeApprovalStore(), &fakeUserLookup{})

			course, err := svc.Claim(context.Background(), tt.actor, 1)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Claim() error = %v, want %v", err, tt.wantErr)
				}
				if len(courses.claimed) != 0 {
					t.Error("course was claimed despite failed precondition")
				}
				return
			}
			if err != nil {
				t.Fatalf("Claim() error: %v", err)
			}
			if course.Status != models.CourseActive {
				t.Errorf("Status = %s, want Active", course.Status)
			}
			if course.InstructorID == nil || *course.InstructorID != tt.actor.ID {
				t.Errorf("InstructorID = %v, want %d", course.InstructorID, tt.actor.ID)
			}
		})
	}
}

func TestClaimLosesRaceToConcurrentInstructor(t *testing.T) {
	courses := newFakeCourseStore(&models.Course{ID: 1, District: "Matara", Status: models.CourseApproved})
	courses.claimErr = apperrors.ErrCourseAlreadyAssigned
	svc := NewCourseService(courses, newFakeApprovalStore(), &fakeUserLookup{})
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	_, err := svc.Claim(context.Background(), actor, 1)
	if !errors.Is(err, apperrors.ErrCourseAlreadyAssigned) {
		t.Fatalf("expected already-assigned error from the guarded update, got %v", err)
	}
}

func TestDecideApproval(t *testing.T) {
	course := &models.Course{ID: 1, District: "Matara", Status: models.CoursePending}

	tests := []struct {
		name             string
		action           ApprovalAction
		actor            access.Actor
		wantErr          error
		wantCourseStatus models.CourseStatus
	}{
		{
			name:             "district manager approves",
			action:           ActionApprove,
			actor:            access.Actor{ID: 2, Role: models.RoleDistrictManager, District: "Matara"},
			wantCourseStatus: models.CourseApproved,
		},
		{
			name:             "district manager rejects",
			action:           ActionReject,
			actor:            access.Actor{ID: 2, Role: models.RoleDistrictManager, District: "Matara"},
			wantCourseStatus: models.CourseRejected,
		},
		{
			name:             "changes requested keeps course pending",
			action:           ActionRequestChanges,
			actor:            access.Actor{ID: 2, Role: models.RoleDistrictManager, District: "Matara"},
			wantCourseStatus: models.CoursePending,
		},
		{
			name:    "other district manager rejected",
			action:  ActionApprove,
			actor:   access.Actor{ID: 2, Role: models.RoleDistrictManager, District: "Colombo"},
			wantErr: apperrors.ErrPermissionDenied,
		},
		{
			name:    "training officer cannot decide",
			action:  ActionApprove,
			actor:   access.Actor{ID: 4, Role: models.RoleTrainingOfficer, District: "Matara"},
			wantErr: apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseCopy := *course
			approval := &models.CourseApproval{
				ID: 1, CourseID: 1, RequestedBy: 4,
				Status: models.ApprovalPending, Course: &courseCopy,
			}
			courses := newFakeCourseStore(&courseCopy)
			svc := NewCourseService(courses, newFakeApprovalStore(approval), &fakeUserLookup{})

			decided, err := svc.DecideApproval(context.Background(), tt.actor, 1, tt.action, "reviewed")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecideApproval() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecideApproval() error: %v", err)
			}
			if decided.Course.Status != tt.wantCourseStatus {
				t.Errorf("course status = %s, want %s", decided.Course.Status, tt.wantCourseStatus)
			}
			if decided.ApprovedBy == nil || *decided.ApprovedBy != tt.actor.ID {
				t.Errorf("ApprovedBy = %v, want %d", decided.ApprovedBy, tt.actor.ID)
			}
		})
	}
}

func TestDecideApprovalRejectsAlreadyDecided(t *testing.T) {
	course := &models.Course{ID: 1, District: "Matara", Status: models.CourseApproved}
	approval := &models.CourseApproval{
		ID: 1, CourseID: 1, Status: models.ApprovalApproved, Course: course,
	}
	svc := NewCourseService(newFakeCourseStore(course), newFakeApprovalStore(approval), &fakeUserLookup{})
	actor := access.Actor{ID: 2, Role: models.RoleDistrictManager, District: "Matara"}

	_, err := svc.DecideApproval(context.Background(), actor, 1, ActionApprove, "")
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected bad request for decided approval, got %v", err)
	}
}

func TestAssignInstructorChecksDistrict(t *testing.T) {
	course := &models.Course{ID: 1, District: "Matara", Status: models.CourseApproved}
	courses := newFakeCourseStore(course)
	users := &fakeUserLookup{users: map[int64]*models.User{
		5: {ID: 5, RoleType: models.RoleInstructor, District: "Colombo"},
		6: {ID: 6, RoleType: models.RoleInstructor, District: "Matara"},
	}}
	svc := NewCourseService(courses, newFakeApprovalStore(), users)
	actor := access.Actor{ID: 2, Role: models.RoleDistrictManager, District: "Matara"}

	if _, err := svc.AssignInstructor(context.Background(), actor, 1, 5); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("cross-district assignment: got %v, want bad request", err)
	}

	assigned, err := svc.AssignInstructor(context.Background(), actor, 1, 6)
	if err != nil {
		t.Fatalf("AssignInstructor() error: %v", err)
	}
	if assigned.InstructorID == nil || *assigned.InstructorID != 6 {
		t.Errorf("InstructorID = %v, want 6", assigned.InstructorID)
	}
	if assigned.Status != models.CourseActive {
		t.Errorf("Status = %s, want Active after assignment", assigned.Status)
	}
}

func TestInstructorListsClaimableCourses(t *testing.T) {
	assigned := int64(7)
	courses := newFakeCourseStore(
		&models.Course{ID: 1, District: "Matara", Status: models.CourseApproved},
		&models.Course{ID: 2, District: "Matara", Status: models.CourseApproved, InstructorID: &assigned},
		&models.Course{ID: 3, District: "Colombo", Status: models.CourseApproved},
		&models.Course{ID: 4, District: "Matara", Status: models.CoursePending},
	)
	svc := NewCourseService(courses, newFakeApprovalStore(), &fakeUserLookup{})
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	available, total, err := svc.ListAvailable(context.Background(), actor, 0, 20)
	if err != nil {
		t.Fatalf("ListAvailable() error: %v", err)
	}
	if total != 1 || len(available) != 1 || available[0].ID != 1 {
		t.Fatalf("got %d courses (total %d), want only the approved unassigned Matara course", len(available), total)
	}

	officer := access.Actor{ID: 2, Role: models.RoleTrainingOfficer, District: "Matara"}
	if _, _, err := svc.ListAvailable(context.Background(), officer, 0, 20); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("non-instructor: got %v, want forbidden", err)
	}
}

func TestUpdateResubmitsAfterChangesRequested(t *testing.T) {
	courses := newFakeCourseStore(&models.Course{ID: 1, District: "Matara", Status: models.CoursePending})
	approvals := newFakeApprovalStore(&models.CourseApproval{ID: 1, CourseID: 1, Status: models.ApprovalChangesRequested})
	svc := NewCourseService(courses, approvals, &fakeUserLookup{})
	actor := access.Actor{ID: 4, Role: models.RoleTrainingOfficer, District: "Matara"}

	name := "Basic Welding II"
	if _, err := svc.Update(context.Background(), actor, 1, &dto.UpdateCourseRequest{Name: &name}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(approvals.created) != 1 {
		t.Fatalf("expected a fresh approval request, got %d", len(approvals.created))
	}
	if approvals.created[0].CourseID != 1 || approvals.created[0].Status != models.ApprovalPending {
		t.Errorf("resubmitted approval = %+v, want pending request for course 1", approvals.created[0])
	}
	if approvals.created[0].RequestedBy != actor.ID {
		t.Errorf("RequestedBy = %d, want %d", approvals.created[0].RequestedBy, actor.ID)
	}
}

func TestUpdateKeepsSingleOpenApproval(t *testing.T) {
	courses := newFakeCourseStore(&models.Course{ID: 1, District: "Matara", Status: models.CoursePending})
	approvals := newFakeApprovalStore(&models.CourseApproval{ID: 1, CourseID: 1, Status: models.ApprovalPending})
	svc := NewCourseService(courses, approvals, &fakeUserLookup{})
	actor := access.Actor{ID: 4, Role: models.RoleTrainingOfficer, District: "Matara"}

	name := "Basic Welding II"
	if _, err := svc.Update(context.Background(), actor, 1, &dto.UpdateCourseRequest{Name: &name}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(approvals.created) != 0 {
		t.Errorf("filed a second approval while one is still open: %+v", approvals.created)
	}
}
