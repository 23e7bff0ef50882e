package dto

// RecordAttendanceRequest is one attendance mark. The (student, course, date)
// key has upsert semantics; a second write overwrites the first.
type RecordAttendanceRequest struct {
	StudentID   int64  `json:"studentId" binding:"required"`
	CourseID    int64  `json:"courseId" binding:"required"`
	Date        string `json:"date" binding:"required" example:"2026-08-20"`
	Status      string `json:"status" binding:"required" example:"present"`
	CheckInTime string `json:"checkInTime" example:"08:45"`
	Remarks     string `json:"remarks"`
}

// BulkAttendanceRequest marks attendance for many students of one course on one date.
type BulkAttendanceRequest struct {
	Date    string                `json:"date" binding:"required"`
	Records []BulkAttendanceEntry `json:"records" binding:"required,dive"`
}

// BulkAttendanceEntry is one row of a bulk attendance request.
type BulkAttendanceEntry struct {
	StudentID   int64  `json:"studentId" binding:"required"`
	Status      string `json:"status" binding:"required"`
	CheckInTime string `json:"checkInTime"`
	Remarks     string `json:"remarks"`
}

// BulkAttendanceResponse reports how many rows were written.
type BulkAttendanceResponse struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// RosterEntry is one student line of a course roster for a given date.
type RosterEntry struct {
	StudentID   int64   `json:"studentId"`
	FullName    string  `json:"fullName"`
	NICNumber   string  `json:"nicNumber"`
	Status      *string `json:"status,omitempty"`
	CheckInTime *string `json:"checkInTime,omitempty"`
	Remarks     *string `json:"remarks,omitempty"`
}
