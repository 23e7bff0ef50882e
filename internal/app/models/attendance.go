package models

import "time"

// Attendance is one attendance row per (student, course, date).
// Writes for an existing key overwrite the row (upsert semantics).
type Attendance struct {
	ID          int64            `json:"id" db:"id"`
	StudentID   int64            `json:"studentId" db:"student_id"`
	CourseID    int64            `json:"courseId" db:"course_id"`
	Date        time.Time        `json:"date" db:"date"`
	Status      AttendanceStatus `json:"status" db:"status" example:"present"`
	CheckInTime *time.Time       `json:"checkInTime,omitempty" db:"check_in_time"`
	Remarks     string           `json:"remarks" db:"remarks"`
	RecordedBy  int64            `json:"recordedBy" db:"recorded_by"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
	Student     *Student         `json:"student,omitempty"` // Relation, no db tag
}

// AttendanceSummary is the derived per-(course, date) aggregate.
// It is a cache over the attendance rows and is only ever written by the
// recompute path; it is always fully recomputable from Attendance.
type AttendanceSummary struct {
	ID             int64     `json:"id" db:"id"`
	CourseID       int64     `json:"courseId" db:"course_id"`
	Date           time.Time `json:"date" db:"date"`
	TotalStudents  int       `json:"totalStudents" db:"total_students"`
	PresentCount   int       `json:"presentCount" db:"present_count"`
	AbsentCount    int       `json:"absentCount" db:"absent_count"`
	LateCount      int       `json:"lateCount" db:"late_count"`
	AttendanceRate float64   `json:"attendanceRate" db:"attendance_rate"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
