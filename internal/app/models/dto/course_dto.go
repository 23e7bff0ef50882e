package dto

// CreateCourseRequest is the payload for creating a course.
// District may be omitted; district-scoped roles have it forced to their own.
type CreateCourseRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	Schedule    string `json:"schedule"`
	District    string `json:"district"`
	CenterID    *int64 `json:"centerId"`
	Status      string `json:"status"`
}

// UpdateCourseRequest is the payload for editing a course.
type UpdateCourseRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Duration    *string `json:"duration"`
	Schedule    *string `json:"schedule"`
	CenterID    *int64  `json:"centerId"`
	Status      *string `json:"status"`
	Progress    *int    `json:"progress"`
}

// AssignInstructorRequest names the instructor a manager assigns to a course.
type AssignInstructorRequest struct {
	InstructorID int64 `json:"instructorId" binding:"required"`
}

// ApprovalDecisionRequest carries optional reviewer comments on a decision.
type ApprovalDecisionRequest struct {
	Comments string `json:"comments"`
}
