package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

type fakeAttendanceStore struct {
	upserted    []*models.Attendance
	upsertErr   error
	present     int
	absent      int
	late        int
	countsErr   error
	summary     *models.AttendanceSummary
	summaryErr  error
	listRecords []*models.Attendance
}

func (f *fakeAttendanceStore) Upsert(_ context.Context, att *models.Attendance) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, att)
	return nil
}

func (f *fakeAttendanceStore) List(_ context.Context, _ access.Scope, _ int64, _ *time.Time, _, limit int) ([]*models.Attendance, int64, error) {
	records := f.listRecords
	if limit < len(records) {
		records = records[:limit]
	}
	return records, int64(len(f.listRecords)), nil
}

func (f *fakeAttendanceStore) ListForDay(_ context.Context, _ int64, _ time.Time) ([]*models.Attendance, error) {
	return f.listRecords, nil
}

func (f *fakeAttendanceStore) CountsForCourseDate(_ context.Context, _ int64, _ time.Time) (int, int, int, error) {
	return f.present, f.absent, f.late, f.countsErr
}

func (f *fakeAttendanceStore) UpsertSummary(_ context.Context, summary *models.AttendanceSummary) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summary = summary
	return nil
}

func (f *fakeAttendanceStore) GetSummary(_ context.Context, _ int64, _ time.Time) (*models.AttendanceSummary, error) {
	if f.summary == nil {
		return nil, apperrors.ErrAttendanceNotFound
	}
	return f.summary, nil
}

func (f *fakeAttendanceStore) ListSummaries(_ context.Context, _ int64, _, _ time.Time) ([]*models.AttendanceSummary, error) {
	if f.summary == nil {
		return nil, nil
	}
	return []*models.AttendanceSummary{f.summary}, nil
}

type fakeCourseLookup struct {
	course *models.Course
	err    error
}

func (f *fakeCourseLookup) GetByID(_ context.Context, _ access.Scope, _ int64) (*models.Course, error) {
	return f.course, f.err
}

type fakeRosterStore struct {
	students []*models.Student
}

func (f *fakeRosterStore) ListByCourse(_ context.Context, _ int64) ([]*models.Student, error) {
	return f.students, nil
}

func instructorCourse(instructorID int64) *models.Course {
	return &models.Course{ID: 1, District: "Matara", Status: models.CourseActive, InstructorID: &instructorID}
}

func TestRecordClearsCheckInForAbsent(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	_, err := svc.Record(context.Background(), actor, &dto.RecordAttendanceRequest{
		StudentID:   10,
		CourseID:    1,
		Date:        "2026-08-20",
		Status:      "absent",
		CheckInTime: "08:45",
	})
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(store.upserted))
	}
	if store.upserted[0].CheckInTime != nil {
		t.Errorf("absent mark kept a check-in time")
	}
}

func TestRecordKeepsCheckInForLate(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	_, err := svc.Record(context.Background(), actor, &dto.RecordAttendanceRequest{
		StudentID:   10,
		CourseID:    1,
		Date:        "2026-08-20",
		Status:      "late",
		CheckInTime: "09:15",
	})
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	got := store.upserted[0].CheckInTime
	if got == nil || got.Format("15:04") != "09:15" {
		t.Errorf("late mark lost its check-in time: %v", got)
	}
}

func TestRecordRecomputesSummaryWithLateWeight(t *testing.T) {
	// 6 present, 2 absent, 2 late at weight 0.5 → (6 + 1) / 10 = 70%.
	store := &fakeAttendanceStore{present: 6, absent: 2, late: 2}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	_, err := svc.Record(context.Background(), actor, &dto.RecordAttendanceRequest{
		StudentID: 10, CourseID: 1, Date: "2026-08-20", Status: "present",
	})
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if store.summary == nil {
		t.Fatal("summary was not recomputed")
	}
	if store.summary.TotalStudents != 10 {
		t.Errorf("TotalStudents = %d, want 10", store.summary.TotalStudents)
	}
	if store.summary.AttendanceRate != 70 {
		t.Errorf("AttendanceRate = %v, want 70", store.summary.AttendanceRate)
	}
}

func TestRecordSurvivesSummaryFailure(t *testing.T) {
	store := &fakeAttendanceStore{summaryErr: errors.New("summary table gone")}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	att, err := svc.Record(context.Background(), actor, &dto.RecordAttendanceRequest{
		StudentID: 10, CourseID: 1, Date: "2026-08-20", Status: "present",
	})
	if err != nil {
		t.Fatalf("Record() should not fail on a summary error: %v", err)
	}
	if att == nil || len(store.upserted) != 1 {
		t.Fatal("attendance row was not written")
	}
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	_, err := svc.Record(context.Background(), actor, &dto.RecordAttendanceRequest{
		StudentID: 10, CourseID: 1, Date: "2026-08-20", Status: "sick",
	})
	if !errors.Is(err, apperrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestRecordRejectsOtherInstructorsCourse(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(99)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	_, err := svc.Record(context.Background(), actor, &dto.RecordAttendanceRequest{
		StudentID: 10, CourseID: 1, Date: "2026-08-20", Status: "present",
	})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestBulkRecordCollectsRowErrors(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := NewAttendanceService(store, &fakeRosterStore{}, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	resp, err := svc.BulkRecord(context.Background(), actor, 1, &dto.BulkAttendanceRequest{
		Date: "2026-08-20",
		Records: []dto.BulkAttendanceEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "nonsense"},
			{StudentID: 3, Status: "late", CheckInTime: "09:05"},
		},
	})
	if err != nil {
		t.Fatalf("BulkRecord() error: %v", err)
	}
	if resp.Updated != 2 {
		t.Errorf("Updated = %d, want 2", resp.Updated)
	}
	if len(resp.Errors) != 1 {
		t.Errorf("Errors = %v, want one entry", resp.Errors)
	}
	if store.summary == nil {
		t.Error("bulk write did not recompute the summary")
	}
}

func TestRosterMergesMarks(t *testing.T) {
	checkIn := time.Date(2026, 8, 20, 8, 45, 0, 0, time.UTC)
	store := &fakeAttendanceStore{
		listRecords: []*models.Attendance{
			{StudentID: 1, Status: models.AttendancePresent, CheckInTime: &checkIn},
		},
	}
	roster := &fakeRosterStore{students: []*models.Student{
		{ID: 1, FullName: "K. Perera", NICNumber: "912345678V"},
		{ID: 2, FullName: "S. Silva", NICNumber: "927654321V"},
	}}
	svc := NewAttendanceService(store, roster, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	entries, err := svc.Roster(context.Background(), actor, 1, "2026-08-20")
	if err != nil {
		t.Fatalf("Roster() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 roster entries, got %d", len(entries))
	}
	if entries[0].Status == nil || *entries[0].Status != "present" {
		t.Errorf("marked student missing status: %+v", entries[0])
	}
	if entries[0].CheckInTime == nil || *entries[0].CheckInTime != "08:45" {
		t.Errorf("marked student missing check-in: %+v", entries[0])
	}
	if entries[1].Status != nil {
		t.Errorf("unmarked student has status: %+v", entries[1])
	}
}

func TestRosterKeepsMarksBeyondRosterSize(t *testing.T) {
	// Marks can exist for students since moved off the course. They must
	// not crowd a current student's mark out of the day's fetch.
	store := &fakeAttendanceStore{
		listRecords: []*models.Attendance{
			{StudentID: 90, Status: models.AttendanceAbsent},
			{StudentID: 91, Status: models.AttendanceAbsent},
			{StudentID: 92, Status: models.AttendanceAbsent},
			{StudentID: 2, Status: models.AttendanceLate},
		},
	}
	roster := &fakeRosterStore{students: []*models.Student{
		{ID: 1, FullName: "K. Perera", NICNumber: "912345678V"},
		{ID: 2, FullName: "S. Silva", NICNumber: "927654321V"},
	}}
	svc := NewAttendanceService(store, roster, &fakeCourseLookup{course: instructorCourse(5)}, 0.5)
	actor := access.Actor{ID: 5, Role: models.RoleInstructor, District: "Matara"}

	entries, err := svc.Roster(context.Background(), actor, 1, "2026-08-20")
	if err != nil {
		t.Fatalf("Roster() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 roster entries, got %d", len(entries))
	}
	if entries[1].Status == nil || *entries[1].Status != "late" {
		t.Errorf("current student's mark was dropped: %+v", entries[1])
	}
}
