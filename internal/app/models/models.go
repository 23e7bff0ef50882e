package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin           RoleType = "admin"
	RoleHeadOffice      RoleType = "head_office"
	RoleDistrictManager RoleType = "district_manager"
	RoleTrainingOfficer RoleType = "training_officer"
	RoleInstructor      RoleType = "instructor"
	RoleDataEntry       RoleType = "data_entry"
	RoleCenterManager   RoleType = "center_manager"
)

// ValidRoles lists every role the system accepts at user creation.
var ValidRoles = []RoleType{
	RoleAdmin,
	RoleHeadOffice,
	RoleDistrictManager,
	RoleTrainingOfficer,
	RoleInstructor,
	RoleDataEntry,
	RoleCenterManager,
}

// IsValidRole reports whether the given role string is a known role.
func IsValidRole(role RoleType) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CourseStatus is the lifecycle status of a course.
type CourseStatus string

const (
	CoursePending  CourseStatus = "Pending"
	CourseApproved CourseStatus = "Approved"
	CourseRejected CourseStatus = "Rejected"
	CourseActive   CourseStatus = "Active"
	CourseInactive CourseStatus = "Inactive"
)

// EnrollmentStatus is the lifecycle status of a student enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "Pending"
	EnrollmentEnrolled  EnrollmentStatus = "Enrolled"
	EnrollmentCompleted EnrollmentStatus = "Completed"
	EnrollmentDropped   EnrollmentStatus = "Dropped"
)

// AttendanceStatus is the per-day attendance mark for a student.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// IsValidAttendanceStatus reports whether the status is one of the accepted marks.
func IsValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// ApprovalStatus is the status of a course approval request.
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "Pending"
	ApprovalApproved         ApprovalStatus = "Approved"
	ApprovalRejected         ApprovalStatus = "Rejected"
	ApprovalChangesRequested ApprovalStatus = "Changes Requested"
)

// QualificationType distinguishes G.C.E. O/L and A/L results.
type QualificationType string

const (
	QualificationOL QualificationType = "OL"
	QualificationAL QualificationType = "AL"
)
