package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/helpers"
	"github.com/tharindu/vtcms/internal/pkg/logger"
)

// AttendanceService defines the interface for attendance operations
type AttendanceService interface {
	Record(ctx context.Context, actor access.Actor, req *dto.RecordAttendanceRequest) (*models.Attendance, error)
	BulkRecord(ctx context.Context, actor access.Actor, courseID int64, req *dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error)
	List(ctx context.Context, actor access.Actor, courseID int64, date string, offset, limit int) ([]*models.Attendance, int64, error)
	Roster(ctx context.Context, actor access.Actor, courseID int64, date string) ([]dto.RosterEntry, error)
	Summary(ctx context.Context, actor access.Actor, courseID int64, date string) (*models.AttendanceSummary, error)
	SummaryRange(ctx context.Context, actor access.Actor, courseID int64, from, to string) ([]*models.AttendanceSummary, error)
}

type attendanceStore interface {
	Upsert(ctx context.Context, att *models.Attendance) error
	List(ctx context.Context, scope access.Scope, courseID int64, date *time.Time, offset, limit int) ([]*models.Attendance, int64, error)
	ListForDay(ctx context.Context, courseID int64, date time.Time) ([]*models.Attendance, error)
	CountsForCourseDate(ctx context.Context, courseID int64, date time.Time) (present, absent, late int, err error)
	UpsertSummary(ctx context.Context, summary *models.AttendanceSummary) error
	GetSummary(ctx context.Context, courseID int64, date time.Time) (*models.AttendanceSummary, error)
	ListSummaries(ctx context.Context, courseID int64, from, to time.Time) ([]*models.AttendanceSummary, error)
}

type rosterStore interface {
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Student, error)
}

// attendanceServiceImpl implements the AttendanceService interface
type attendanceServiceImpl struct {
	attendance attendanceStore
	students   rosterStore
	courses    courseLookup
	lateWeight float64
}

// NewAttendanceService creates a new attendance service instance.
// lateWeight is the contribution of a late mark to the attendance rate,
// relative to a present mark.
func NewAttendanceService(attendance attendanceStore, students rosterStore, courses courseLookup, lateWeight float64) AttendanceService {
	return &attendanceServiceImpl{
		attendance: attendance,
		students:   students,
		courses:    courses,
		lateWeight: lateWeight,
	}
}

// Record writes one attendance mark and recomputes the day's roll-up.
// An absent mark always clears the check-in time, whatever the payload
// says. A failed roll-up is logged but does not fail the write.
func (s *attendanceServiceImpl) Record(ctx context.Context, actor access.Actor, req *dto.RecordAttendanceRequest) (*models.Attendance, error) {
	if err := access.CanCreate(actor, access.ResourceAttendance); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, access.ScopeFor(actor, access.ResourceCourse), req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.canRecordFor(actor, course); err != nil {
		return nil, err
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}

	att, err := s.buildRecord(actor, req.CourseID, date, req.StudentID, req.Status, req.CheckInTime, req.Remarks)
	if err != nil {
		return nil, err
	}
	if err := s.attendance.Upsert(ctx, att); err != nil {
		return nil, err
	}

	s.recomputeSummary(ctx, req.CourseID, date)
	return att, nil
}

// BulkRecord writes marks for many students of one course day. Rows that
// fail validation are reported individually; the rest are written, and
// the roll-up is recomputed once at the end.
func (s *attendanceServiceImpl) BulkRecord(ctx context.Context, actor access.Actor, courseID int64, req *dto.BulkAttendanceRequest) (*dto.BulkAttendanceResponse, error) {
	if err := access.CanCreate(actor, access.ResourceAttendance); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, access.ScopeFor(actor, access.ResourceCourse), courseID)
	if err != nil {
		return nil, err
	}
	if err := s.canRecordFor(actor, course); err != nil {
		return nil, err
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}

	resp := &dto.BulkAttendanceResponse{}
	for _, entry := range req.Records {
		att, err := s.buildRecord(actor, courseID, date, entry.StudentID, entry.Status, entry.CheckInTime, entry.Remarks)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("student %d: %v", entry.StudentID, err))
			continue
		}
		if err := s.attendance.Upsert(ctx, att); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("student %d: %v", entry.StudentID, err))
			continue
		}
		resp.Updated++
	}

	if resp.Updated > 0 {
		s.recomputeSummary(ctx, courseID, date)
	}
	return resp, nil
}

// List retrieves attendance rows in the actor's scope.
func (s *attendanceServiceImpl) List(ctx context.Context, actor access.Actor, courseID int64, date string, offset, limit int) ([]*models.Attendance, int64, error) {
	scope := access.ScopeFor(actor, access.ResourceAttendance)

	var day *time.Time
	if date != "" {
		parsed, err := helpers.ParseDate(date)
		if err != nil {
			return nil, 0, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
		}
		day = &parsed
	}
	return s.attendance.List(ctx, scope, courseID, day, offset, limit)
}

// Roster merges a course's enrolled students with any marks already
// stored for the date, for rendering an attendance sheet.
func (s *attendanceServiceImpl) Roster(ctx context.Context, actor access.Actor, courseID int64, date string) ([]dto.RosterEntry, error) {
	if _, err := s.courses.GetByID(ctx, access.ScopeFor(actor, access.ResourceCourse), courseID); err != nil {
		return nil, err
	}
	day, err := helpers.ParseDate(date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}

	students, err := s.students.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.ListForDay(ctx, courseID, day)
	if err != nil {
		return nil, err
	}

	marks := make(map[int64]*models.Attendance, len(records))
	for _, rec := range records {
		marks[rec.StudentID] = rec
	}

	roster := make([]dto.RosterEntry, 0, len(students))
	for _, student := range students {
		entry := dto.RosterEntry{
			StudentID: student.ID,
			FullName:  student.FullName,
			NICNumber: student.NICNumber,
		}
		if rec, ok := marks[student.ID]; ok {
			status := string(rec.Status)
			entry.Status = &status
			entry.Remarks = &rec.Remarks
			if rec.CheckInTime != nil {
				checkIn := rec.CheckInTime.Format("15:04")
				entry.CheckInTime = &checkIn
			}
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// Summary returns the cached roll-up for a course day.
func (s *attendanceServiceImpl) Summary(ctx context.Context, actor access.Actor, courseID int64, date string) (*models.AttendanceSummary, error) {
	if _, err := s.courses.GetByID(ctx, access.ScopeFor(actor, access.ResourceCourse), courseID); err != nil {
		return nil, err
	}
	day, err := helpers.ParseDate(date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	return s.attendance.GetSummary(ctx, courseID, day)
}

// SummaryRange returns roll-ups over a date range, oldest first.
func (s *attendanceServiceImpl) SummaryRange(ctx context.Context, actor access.Actor, courseID int64, from, to string) ([]*models.AttendanceSummary, error) {
	if _, err := s.courses.GetByID(ctx, access.ScopeFor(actor, access.ResourceCourse), courseID); err != nil {
		return nil, err
	}
	fromDay, err := helpers.ParseDate(from)
	if err != nil {
		return nil, apperrors.NewValidationError("from", "date must be YYYY-MM-DD")
	}
	toDay, err := helpers.ParseDate(to)
	if err != nil {
		return nil, apperrors.NewValidationError("to", "date must be YYYY-MM-DD")
	}
	return s.attendance.ListSummaries(ctx, courseID, fromDay, toDay)
}

// canRecordFor gates who may write marks against a course: instructors
// only for courses assigned to them, district roles for their district.
func (s *attendanceServiceImpl) canRecordFor(actor access.Actor, course *models.Course) error {
	if actor.Role == models.RoleInstructor {
		if course.InstructorID == nil || *course.InstructorID != actor.ID {
			return apperrors.NewForbiddenError("can only record attendance for your own courses")
		}
		return nil
	}
	return access.CanModify(actor, access.ResourceAttendance, access.Target{
		District:   course.District,
		RecordedBy: actor.ID,
	})
}

func (s *attendanceServiceImpl) buildRecord(actor access.Actor, courseID int64, date time.Time, studentID int64, status, checkIn, remarks string) (*models.Attendance, error) {
	mark := models.AttendanceStatus(status)
	if !models.IsValidAttendanceStatus(mark) {
		return nil, apperrors.ErrInvalidStatus
	}

	att := &models.Attendance{
		StudentID:  studentID,
		CourseID:   courseID,
		Date:       date,
		Status:     mark,
		Remarks:    remarks,
		RecordedBy: actor.ID,
	}

	// Absent students carry no check-in time, even if one was sent.
	if mark != models.AttendanceAbsent && checkIn != "" {
		t, err := time.Parse("15:04", checkIn)
		if err != nil {
			return nil, apperrors.NewValidationError("checkInTime", "time must be HH:MM")
		}
		checkInAt := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
		att.CheckInTime = &checkInAt
	}
	return att, nil
}

// recomputeSummary rebuilds the roll-up row for a course day from the
// stored marks. The rate weighs late marks at lateWeight of a present
// mark. Failures are logged and swallowed: the summary is a cache the
// next write will repair.
func (s *attendanceServiceImpl) recomputeSummary(ctx context.Context, courseID int64, date time.Time) {
	present, absent, late, err := s.attendance.CountsForCourseDate(ctx, courseID, date)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Failed to count attendance for summary")
		return
	}

	total := present + absent + late
	var rate float64
	if total > 0 {
		rate = (float64(present) + float64(late)*s.lateWeight) / float64(total) * 100
	}

	summary := &models.AttendanceSummary{
		CourseID:       courseID,
		Date:           date,
		TotalStudents:  total,
		PresentCount:   present,
		AbsentCount:    absent,
		LateCount:      late,
		AttendanceRate: rate,
	}
	if err := s.attendance.UpsertSummary(ctx, summary); err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Failed to write attendance summary")
	}
}
