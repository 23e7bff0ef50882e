package access

import (
	"errors"
	"testing"

	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

func TestScopeFor(t *testing.T) {
	centerID := int64(7)

	tests := []struct {
		name     string
		actor    Actor
		resource Resource
		want     Scope
	}{
		{
			name:     "admin sees everything",
			actor:    Actor{ID: 1, Role: models.RoleAdmin},
			resource: ResourceStudent,
			want:     Scope{All: true},
		},
		{
			name:     "head office sees everything",
			actor:    Actor{ID: 2, Role: models.RoleHeadOffice},
			resource: ResourceCourse,
			want:     Scope{All: true},
		},
		{
			name:     "district manager scoped to home district",
			actor:    Actor{ID: 3, Role: models.RoleDistrictManager, District: "Galle"},
			resource: ResourceCourse,
			want:     Scope{District: "Galle"},
		},
		{
			name:     "district role without district sees nothing",
			actor:    Actor{ID: 4, Role: models.RoleTrainingOfficer},
			resource: ResourceStudent,
			want:     Scope{None: true},
		},
		{
			name:     "instructor sees only own courses",
			actor:    Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
			resource: ResourceCourse,
			want:     Scope{Instructor: 5},
		},
		{
			name:     "instructor sees only attendance they recorded",
			actor:    Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
			resource: ResourceAttendance,
			want:     Scope{RecordedBy: 5},
		},
		{
			name:     "instructor reads students unrestricted",
			actor:    Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"},
			resource: ResourceStudent,
			want:     Scope{All: true},
		},
		{
			name:     "center manager scoped to own center",
			actor:    Actor{ID: 6, Role: models.RoleCenterManager, CenterID: &centerID},
			resource: ResourceStudent,
			want:     Scope{CenterID: 7},
		},
		{
			name:     "center manager without center sees nothing",
			actor:    Actor{ID: 6, Role: models.RoleCenterManager},
			resource: ResourceStudent,
			want:     Scope{None: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScopeFor(tt.actor, tt.resource)
			if got != tt.want {
				t.Errorf("ScopeFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCreateDistrict(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		resource  Resource
		requested string
		want      string
		wantErr   error
	}{
		{
			name:      "admin uses requested district",
			actor:     Actor{Role: models.RoleAdmin},
			resource:  ResourceCourse,
			requested: "Colombo",
			want:      "Colombo",
		},
		{
			name:     "admin must supply a district",
			actor:    Actor{Role: models.RoleAdmin},
			resource: ResourceCourse,
			wantErr:  apperrors.ErrValidationFailed,
		},
		{
			name:      "training officer course forced to home district",
			actor:     Actor{Role: models.RoleTrainingOfficer, District: "Matara"},
			resource:  ResourceCourse,
			requested: "Colombo",
			want:      "Matara",
		},
		{
			name:     "training officer defaults to home district",
			actor:    Actor{Role: models.RoleTrainingOfficer, District: "Matara"},
			resource: ResourceStudent,
			want:     "Matara",
		},
		{
			name:      "training officer student mismatch rejected",
			actor:     Actor{Role: models.RoleTrainingOfficer, District: "Matara"},
			resource:  ResourceStudent,
			requested: "Colombo",
			wantErr:   apperrors.ErrValidationFailed,
		},
		{
			name:      "data entry student forced to home district",
			actor:     Actor{Role: models.RoleDataEntry, District: "Kandy"},
			resource:  ResourceStudent,
			requested: "Colombo",
			want:      "Kandy",
		},
		{
			name:      "instructor cannot create",
			actor:     Actor{Role: models.RoleInstructor, District: "Kandy"},
			resource:  ResourceStudent,
			requested: "Kandy",
			wantErr:   apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreateDistrict(tt.actor, tt.resource, tt.requested)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateDistrict() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateDistrict() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CreateDistrict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanModify(t *testing.T) {
	tests := []struct {
		name     string
		actor    Actor
		resource Resource
		target   Target
		wantErr  error
	}{
		{
			name:     "head office modifies anything",
			actor:    Actor{Role: models.RoleHeadOffice},
			resource: ResourceCourse,
			target:   Target{District: "Jaffna", CourseStatus: models.CourseActive},
		},
		{
			name:     "district manager same district",
			actor:    Actor{Role: models.RoleDistrictManager, District: "Galle"},
			resource: ResourceCenter,
			target:   Target{District: "Galle"},
		},
		{
			name:     "district manager other district",
			actor:    Actor{Role: models.RoleDistrictManager, District: "Galle"},
			resource: ResourceCenter,
			target:   Target{District: "Matara"},
			wantErr:  apperrors.ErrPermissionDenied,
		},
		{
			name:     "training officer edits own pending course",
			actor:    Actor{Role: models.RoleTrainingOfficer, District: "Matara"},
			resource: ResourceCourse,
			target:   Target{District: "Matara", CourseStatus: models.CoursePending},
		},
		{
			name:     "training officer cannot edit approved course",
			actor:    Actor{Role: models.RoleTrainingOfficer, District: "Matara"},
			resource: ResourceCourse,
			target:   Target{District: "Matara", CourseStatus: models.CourseApproved},
			wantErr:  apperrors.ErrPermissionDenied,
		},
		{
			name:     "data entry edits students only",
			actor:    Actor{Role: models.RoleDataEntry, District: "Kandy"},
			resource: ResourceCourse,
			target:   Target{District: "Kandy", CourseStatus: models.CoursePending},
			wantErr:  apperrors.ErrPermissionDenied,
		},
		{
			name:     "instructor edits own attendance",
			actor:    Actor{ID: 9, Role: models.RoleInstructor},
			resource: ResourceAttendance,
			target:   Target{RecordedBy: 9},
		},
		{
			name:     "instructor cannot edit others attendance",
			actor:    Actor{ID: 9, Role: models.RoleInstructor},
			resource: ResourceAttendance,
			target:   Target{RecordedBy: 4},
			wantErr:  apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanModify(tt.actor, tt.resource, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CanModify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanModify() unexpected error: %v", err)
			}
		})
	}
}

func TestCanClaimCourse(t *testing.T) {
	instructor := Actor{ID: 11, Role: models.RoleInstructor, District: "Matara"}
	otherInstructor := int64(12)

	tests := []struct {
		name    string
		actor   Actor
		course  models.Course
		wantErr error
	}{
		{
			name:   "approved unassigned course in own district",
			actor:  instructor,
			course: models.Course{District: "Matara", Status: models.CourseApproved},
		},
		{
			name:    "non-instructor rejected",
			actor:   Actor{ID: 1, Role: models.RoleAdmin, District: "Matara"},
			course:  models.Course{District: "Matara", Status: models.CourseApproved},
			wantErr: apperrors.ErrPermissionDenied,
		},
		{
			name:    "district mismatch is a permission failure",
			actor:   instructor,
			course:  models.Course{District: "Colombo", Status: models.CourseApproved},
			wantErr: apperrors.ErrPermissionDenied,
		},
		{
			name:    "unapproved course is a request failure",
			actor:   instructor,
			course:  models.Course{District: "Matara", Status: models.CoursePending},
			wantErr: apperrors.ErrBadRequest,
		},
		{
			name:    "already assigned course is a request failure",
			actor:   instructor,
			course:  models.Course{District: "Matara", Status: models.CourseApproved, InstructorID: &otherInstructor},
			wantErr: apperrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanClaimCourse(tt.actor, &tt.course)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CanClaimCourse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CanClaimCourse() unexpected error: %v", err)
			}
		})
	}
}

func TestCanClaimCoursePreconditionOrder(t *testing.T) {
	// District is checked before status and status before assignment, so a
	// course that violates all three reports the district failure.
	instructor := Actor{ID: 11, Role: models.RoleInstructor, District: "Matara"}
	assigned := int64(12)
	course := models.Course{District: "Colombo", Status: models.CoursePending, InstructorID: &assigned}

	err := CanClaimCourse(instructor, &course)
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected permission failure first, got %v", err)
	}
}

func TestCanCreateUserRole(t *testing.T) {
	dm := Actor{Role: models.RoleDistrictManager, District: "Galle"}

	if err := CanCreateUserRole(Actor{Role: models.RoleAdmin}, models.RoleDistrictManager); err != nil {
		t.Fatalf("admin should create any role: %v", err)
	}
	if err := CanCreateUserRole(dm, models.RoleInstructor); err != nil {
		t.Fatalf("district manager should create instructors: %v", err)
	}
	if err := CanCreateUserRole(dm, models.RoleDistrictManager); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("district manager creating district manager: got %v", err)
	}
	if err := CanCreateUserRole(Actor{Role: models.RoleInstructor}, models.RoleDataEntry); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("instructor creating accounts: got %v", err)
	}
}
