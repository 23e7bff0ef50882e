package models

import "time"

// Course defines the course model based on the 'courses' table.
// A course belongs to one district and optionally one center, and may be
// assigned to one instructor (a user with role 'instructor').
type Course struct {
	ID           int64        `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Code         string       `json:"code" db:"code"`
	Description  string       `json:"description" db:"description"`
	Category     string       `json:"category" db:"category"`
	Duration     string       `json:"duration" db:"duration"`
	Schedule     string       `json:"schedule" db:"schedule"`
	District     string       `json:"district" db:"district"`
	CenterID     *int64       `json:"centerId,omitempty" db:"center_id"`
	InstructorID *int64       `json:"instructorId,omitempty" db:"instructor_id"`
	Status       CourseStatus `json:"status" db:"status" example:"Pending"`
	StudentCount int          `json:"studentCount" db:"student_count"`
	Progress     int          `json:"progress" db:"progress"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
	Center       *Center      `json:"center,omitempty"`     // Relation, no db tag
	Instructor   *User        `json:"instructor,omitempty"` // Relation, no db tag
}

// CourseApproval defines an approval request raised by a training officer
// and decided by a district manager.
type CourseApproval struct {
	ID          int64          `json:"id" db:"id"`
	CourseID    int64          `json:"courseId" db:"course_id"`
	RequestedBy int64          `json:"requestedBy" db:"requested_by"`
	ApprovedBy  *int64         `json:"approvedBy,omitempty" db:"approved_by"`
	Status      ApprovalStatus `json:"status" db:"status"`
	Comments    string         `json:"comments" db:"comments"`
	DecidedAt   *time.Time     `json:"decidedAt,omitempty" db:"decided_at"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	Course      *Course        `json:"course,omitempty"` // Relation, no db tag
}
