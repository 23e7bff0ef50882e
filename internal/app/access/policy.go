// Package access implements the role-scoped access filter applied to every
// resource operation. An Actor is threaded explicitly into each call; the
// package holds no request-bound state. Rules are expressed as a policy
// table keyed by role rather than per-endpoint role chains.
package access

import (
	"fmt"

	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

// Actor is the authenticated identity every rule is evaluated against.
type Actor struct {
	ID       int64
	Role     models.RoleType
	District string
	CenterID *int64
}

// Resource names a protected collection.
type Resource string

const (
	ResourceCenter     Resource = "center"
	ResourceCourse     Resource = "course"
	ResourceStudent    Resource = "student"
	ResourceUser       Resource = "user"
	ResourceAttendance Resource = "attendance"
	ResourceApproval   Resource = "approval"
)

// Scope narrows a list query before it reaches the data store. Zero-valued
// fields impose no restriction; None marks an actor with no visibility at
// all, which yields an empty collection rather than an error.
type Scope struct {
	All        bool
	None       bool
	District   string // restrict to rows whose district equals this value
	Instructor int64  // restrict courses to this assigned instructor
	RecordedBy int64  // restrict attendance to rows recorded by this actor
	CenterID   int64  // restrict to rows belonging to this center
}

// Target carries the instance attributes a write rule compares against.
type Target struct {
	District     string
	CourseStatus models.CourseStatus
	RecordedBy   int64
}

// districtScoped roles see and touch only their home district.
func districtScoped(role models.RoleType) bool {
	switch role {
	case models.RoleDistrictManager, models.RoleTrainingOfficer, models.RoleDataEntry:
		return true
	}
	return false
}

func unrestricted(role models.RoleType) bool {
	return role == models.RoleAdmin || role == models.RoleHeadOffice
}

// ScopeFor decides which subset of a collection the actor may list or read.
// The same scope must be applied to instance reads so that out-of-scope
// lookups are indistinguishable from missing rows.
func ScopeFor(a Actor, r Resource) Scope {
	if unrestricted(a.Role) {
		return Scope{All: true}
	}

	switch a.Role {
	case models.RoleDistrictManager, models.RoleTrainingOfficer, models.RoleDataEntry:
		if a.District == "" {
			return Scope{None: true}
		}
		return Scope{District: a.District}

	case models.RoleInstructor:
		switch r {
		case ResourceCourse:
			return Scope{Instructor: a.ID}
		case ResourceAttendance:
			return Scope{RecordedBy: a.ID}
		case ResourceStudent, ResourceCenter:
			// Instructors have read-only visibility across districts.
			return Scope{All: true}
		case ResourceApproval:
			return Scope{RecordedBy: a.ID}
		}
		return Scope{None: true}

	case models.RoleCenterManager:
		if a.CenterID == nil {
			return Scope{None: true}
		}
		return Scope{CenterID: *a.CenterID}
	}

	return Scope{None: true}
}

// CanCreate decides whether the actor's role may create the resource at all.
func CanCreate(a Actor, r Resource) error {
	if unrestricted(a.Role) {
		return nil
	}

	switch r {
	case ResourceCenter:
		if a.Role == models.RoleDistrictManager {
			return nil
		}
	case ResourceCourse:
		if districtScoped(a.Role) {
			return nil
		}
	case ResourceStudent:
		if districtScoped(a.Role) {
			return nil
		}
	case ResourceUser:
		if a.Role == models.RoleDistrictManager {
			return nil
		}
	case ResourceAttendance:
		if districtScoped(a.Role) || a.Role == models.RoleInstructor {
			return nil
		}
	case ResourceApproval:
		if a.Role == models.RoleTrainingOfficer {
			return nil
		}
	}

	return apperrors.NewForbiddenError(fmt.Sprintf("your role may not create %ss", r))
}

// CreateDistrict resolves the district a new resource is stored under.
// District-scoped roles either have the value forced to their own district
// or have a mismatching value rejected, depending on the resource:
// students reject a mismatch for training officers but force it for data
// entry officers; courses are always forced to the creator's district.
func CreateDistrict(a Actor, r Resource, requested string) (string, error) {
	if unrestricted(a.Role) {
		if requested == "" {
			return "", apperrors.NewValidationError("district", "district is required")
		}
		return requested, nil
	}

	if !districtScoped(a.Role) {
		return "", apperrors.NewForbiddenError(fmt.Sprintf("your role may not create %ss", r))
	}

	if a.District == "" {
		return "", apperrors.NewForbiddenError("your account has no district assigned")
	}

	if requested == "" {
		return a.District, nil
	}

	if requested == a.District {
		return requested, nil
	}

	// Mismatching district supplied.
	if r == ResourceStudent && a.Role == models.RoleTrainingOfficer {
		return "", apperrors.NewValidationError("district",
			fmt.Sprintf("you can only add students from your assigned district (%s)", a.District))
	}

	// Courses and data-entry student creation silently pin to the actor's district.
	return a.District, nil
}

// CanModify decides whether the actor may update or delete a specific
// instance. The same check runs for direct instance writes as for writes
// reached through a list, so scoping cannot be bypassed by ID.
func CanModify(a Actor, r Resource, t Target) error {
	if unrestricted(a.Role) {
		return nil
	}

	switch a.Role {
	case models.RoleDistrictManager:
		if t.District != a.District {
			return apperrors.NewForbiddenError(fmt.Sprintf("can only update %ss in your district", r))
		}
		return nil

	case models.RoleTrainingOfficer:
		if t.District != a.District {
			return apperrors.NewForbiddenError(fmt.Sprintf("can only update %ss in your district", r))
		}
		if r == ResourceCourse && t.CourseStatus != models.CoursePending {
			return apperrors.NewForbiddenError("training officers can only edit pending courses")
		}
		return nil

	case models.RoleDataEntry:
		if r != ResourceStudent && r != ResourceAttendance {
			return apperrors.NewForbiddenError(fmt.Sprintf("data entry officers may not modify %ss", r))
		}
		if t.District != a.District {
			return apperrors.NewForbiddenError(fmt.Sprintf("can only update %ss in your district", r))
		}
		return nil

	case models.RoleInstructor:
		if r == ResourceAttendance && t.RecordedBy == a.ID {
			return nil
		}
		return apperrors.NewForbiddenError("instructors may only modify attendance they recorded")
	}

	return apperrors.NewForbiddenError("permission denied")
}

// CanClaimCourse checks the three preconditions for an instructor taking a
// course for themselves. Each violated precondition fails with its own
// error: wrong district is a permission failure, wrong status and an
// existing assignment are request failures.
func CanClaimCourse(a Actor, course *models.Course) error {
	if a.Role != models.RoleInstructor {
		return apperrors.NewForbiddenError("only instructors can assign courses to themselves")
	}
	if course.District != a.District {
		return apperrors.NewForbiddenError("can only assign courses from your district")
	}
	if course.Status != models.CourseApproved {
		return apperrors.NewBadRequestError("can only assign approved courses")
	}
	if course.InstructorID != nil {
		return apperrors.NewBadRequestError("course is already assigned to an instructor")
	}
	return nil
}

// CanCreateUserRole gates account provisioning. Admin and head office may
// create any role; a district manager may create accounts for their
// district but never another district manager.
func CanCreateUserRole(a Actor, newRole models.RoleType) error {
	if unrestricted(a.Role) {
		return nil
	}
	if a.Role == models.RoleDistrictManager {
		if newRole == models.RoleDistrictManager {
			return apperrors.NewForbiddenError("district managers may not create other district managers")
		}
		return nil
	}
	return apperrors.NewForbiddenError("only administrators and district managers can create accounts")
}
