package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/regno"
	"github.com/tharindu/vtcms/internal/app/repositories"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

type fakeStudentStore struct {
	created        []*models.Student
	createErrs     []error // consumed one per Create call
	partitionCount int
	nicExists      bool
	students       map[int64]*models.Student
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			f.partitionCount++ // a concurrent writer landed first
			return err
		}
	}
	student.ID = int64(len(f.created) + 1)
	f.created = append(f.created, student)
	f.partitionCount++
	return nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, scope access.Scope, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	if scope.District != "" && s.District != scope.District {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeStudentStore) List(_ context.Context, _ access.Scope, _, _, _ string, _ int64, _, _ int) ([]*models.Student, int64, error) {
	return nil, 0, nil
}

func (f *fakeStudentStore) ListByCourse(_ context.Context, _ int64) ([]*models.Student, error) {
	return nil, nil
}

func (f *fakeStudentStore) Update(_ context.Context, _ *models.Student) error { return nil }

func (f *fakeStudentStore) ReplaceQualifications(_ context.Context, _ int64, _ []models.Qualification) error {
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, _ int64) error { return nil }

func (f *fakeStudentStore) NICExists(_ context.Context, _ string, _ int64) (bool, error) {
	return f.nicExists, nil
}

func (f *fakeStudentStore) Stats(_ context.Context, _ access.Scope) (*repositories.StudentStats, error) {
	return &repositories.StudentStats{CenterDistribution: map[string]int64{}}, nil
}

func (f *fakeStudentStore) CountPartition(_ context.Context, _ string, _ *int64, _ string, _ int64) (int, error) {
	return f.partitionCount, nil
}

func newStudentService(store *fakeStudentStore, course *models.Course) StudentService {
	return NewStudentService(store, &fakeCourseLookup{course: course, err: courseErrIfNil(course)}, regno.NewAllocator(store))
}

func courseErrIfNil(course *models.Course) error {
	if course == nil {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

func TestCreateStudentAssignsRegistrationNumber(t *testing.T) {
	store := &fakeStudentStore{}
	course := &models.Course{ID: 3, Name: "Basic Welding", Code: "WLD-01", District: "Matara"}
	svc := newStudentService(store, course)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Matara"}

	courseID := int64(3)
	student, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName:       "Kasun Perera",
		NICNumber:      "912345678V",
		District:       "Matara",
		CourseID:       &courseID,
		EnrollmentDate: "2026-02-01",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	segments := strings.Split(student.RegistrationNo, "/")
	if len(segments) != 5 {
		t.Fatalf("registration number %q does not have 5 segments", student.RegistrationNo)
	}
	if segments[0] != "MTR" || segments[1] != "WEL" || segments[2] != "26" || segments[3] != "0001" {
		t.Errorf("unexpected segments: %v", segments)
	}
	// Segments round-trip against the stored columns.
	if student.DistrictCode != segments[0] || student.CourseCode != segments[1] ||
		student.BatchYear != segments[2] || student.StudentNumber != segments[3] ||
		student.RegistrationYear != segments[4] {
		t.Errorf("stored segments do not match composed number: %+v", student)
	}
	if student.CreatedBy == nil || *student.CreatedBy != actor.ID {
		t.Errorf("CreatedBy = %v, want %d", student.CreatedBy, actor.ID)
	}
}

func TestCreateStudentSequencesWithinPartition(t *testing.T) {
	store := &fakeStudentStore{}
	course := &models.Course{ID: 3, Name: "Basic Welding", Code: "WLD-01"}
	svc := newStudentService(store, course)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Matara"}
	courseID := int64(3)

	first, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "A", NICNumber: "912345678V", District: "Matara",
		CourseID: &courseID, EnrollmentDate: "2026-02-01",
	})
	if err != nil {
		t.Fatalf("first Create() error: %v", err)
	}
	second, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "B", NICNumber: "922345678V", District: "Matara",
		CourseID: &courseID, EnrollmentDate: "2026-02-01",
	})
	if err != nil {
		t.Fatalf("second Create() error: %v", err)
	}

	if first.StudentNumber != "0001" || second.StudentNumber != "0002" {
		t.Errorf("sequence = %s, %s; want 0001, 0002", first.StudentNumber, second.StudentNumber)
	}
}

func TestCreateStudentRetriesOnNumberCollision(t *testing.T) {
	store := &fakeStudentStore{createErrs: []error{apperrors.ErrRegistrationNoExists}}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Matara"}

	student, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "Kasun Perera", NICNumber: "912345678V", District: "Matara",
	})
	if err != nil {
		t.Fatalf("Create() should retry past a collision: %v", err)
	}
	// The colliding attempt bumped the partition count, so the retry got
	// the next sequence.
	if student.StudentNumber != "0002" {
		t.Errorf("StudentNumber = %s, want 0002 after retry", student.StudentNumber)
	}
}

func TestCreateStudentGivesUpAfterRetries(t *testing.T) {
	collisions := make([]error, allocateRetries+1)
	for i := range collisions {
		collisions[i] = apperrors.ErrRegistrationNoExists
	}
	store := &fakeStudentStore{createErrs: collisions}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Matara"}

	_, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "Kasun Perera", NICNumber: "912345678V", District: "Matara",
	})
	if !errors.Is(err, apperrors.ErrRegistrationNoExists) {
		t.Fatalf("expected collision error after exhausted retries, got %v", err)
	}
}

func TestCreateStudentForcesDataEntryDistrict(t *testing.T) {
	store := &fakeStudentStore{}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Kandy"}

	student, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "Kasun Perera", NICNumber: "912345678V", District: "Colombo",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if student.District != "Kandy" {
		t.Errorf("District = %q, want forced Kandy", student.District)
	}
	if student.DistrictCode != "KAN" {
		t.Errorf("DistrictCode = %q, want KAN", student.DistrictCode)
	}
}

func TestCreateStudentRejectsTrainingOfficerMismatch(t *testing.T) {
	store := &fakeStudentStore{}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleTrainingOfficer, District: "Matara"}

	_, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "Kasun Perera", NICNumber: "912345678V", District: "Colombo",
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("student was created despite district mismatch")
	}
}

func TestCreateStudentRejectsDuplicateNIC(t *testing.T) {
	store := &fakeStudentStore{nicExists: true}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Kandy"}

	_, err := svc.Create(context.Background(), actor, &dto.CreateStudentRequest{
		FullName: "Kasun Perera", NICNumber: "912345678V",
	})
	if !errors.Is(err, apperrors.ErrNICAlreadyExists) {
		t.Fatalf("expected duplicate NIC error, got %v", err)
	}
}

func TestPreviewDoesNotCreate(t *testing.T) {
	store := &fakeStudentStore{partitionCount: 4}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Kandy"}

	resp, err := svc.PreviewRegistration(context.Background(), actor, &dto.RegistrationPreviewRequest{
		District: "Kandy",
	})
	if err != nil {
		t.Fatalf("PreviewRegistration() error: %v", err)
	}
	if resp.StudentNumber != "0005" {
		t.Errorf("StudentNumber = %s, want 0005", resp.StudentNumber)
	}
	if resp.CourseCode != "GEN" {
		t.Errorf("CourseCode = %s, want GEN without a course", resp.CourseCode)
	}
	if len(store.created) != 0 {
		t.Error("preview created a student")
	}
}

func TestImportCSVRunsEachRowThroughCreation(t *testing.T) {
	store := &fakeStudentStore{}
	svc := newStudentService(store, nil)
	actor := access.Actor{ID: 7, Role: models.RoleDataEntry, District: "Kandy"}

	csvBody := "full_name,nic_number,district\n" +
		"Kasun Perera,912345678V,Kandy\n" +
		"No NIC Person,,Kandy\n" +
		"Sunil Silva,200012345678,Colombo\n"

	result, err := svc.ImportCSV(context.Background(), actor, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("ImportCSV() error: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want one entry", result.Errors)
	}
	// The mismatching district row was forced to the officer's district.
	for _, s := range store.created {
		if s.District != "Kandy" {
			t.Errorf("imported student district = %q, want Kandy", s.District)
		}
	}
	if result.BatchID == "" {
		t.Error("missing batch ID")
	}
}
