package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/regno"
	"github.com/tharindu/vtcms/internal/app/repositories"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
	"github.com/tharindu/vtcms/internal/pkg/export"
	"github.com/tharindu/vtcms/internal/pkg/helpers"
	"github.com/tharindu/vtcms/internal/pkg/logger"
	"github.com/tharindu/vtcms/internal/pkg/validation"
)

// allocateRetries bounds the retry loop around registration-number
// collisions. Two concurrent creations in the same partition both compute
// the same sequence; the loser recomputes against the new count.
const allocateRetries = 3

// StudentService defines the interface for student operations
type StudentService interface {
	Create(ctx context.Context, actor access.Actor, req *dto.CreateStudentRequest) (*models.Student, error)
	PreviewRegistration(ctx context.Context, actor access.Actor, req *dto.RegistrationPreviewRequest) (*dto.RegistrationPreviewResponse, error)
	GetByID(ctx context.Context, actor access.Actor, id int64) (*models.Student, error)
	List(ctx context.Context, actor access.Actor, district, status, search string, courseID int64, offset, limit int) ([]*models.Student, int64, error)
	ListByCourse(ctx context.Context, actor access.Actor, courseID int64) ([]*models.Student, error)
	Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, actor access.Actor, id int64) error
	Stats(ctx context.Context, actor access.Actor) (*dto.StudentStatsResponse, error)
	ImportCSV(ctx context.Context, actor access.Actor, r io.Reader) (*dto.ImportResultResponse, error)
}

type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Student, error)
	List(ctx context.Context, scope access.Scope, district, status, search string, courseID int64, offset, limit int) ([]*models.Student, int64, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	ReplaceQualifications(ctx context.Context, studentID int64, quals []models.Qualification) error
	Delete(ctx context.Context, id int64) error
	NICExists(ctx context.Context, nic string, excludeID int64) (bool, error)
	Stats(ctx context.Context, scope access.Scope) (*repositories.StudentStats, error)
}

type courseLookup interface {
	GetByID(ctx context.Context, scope access.Scope, id int64) (*models.Course, error)
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	students  studentStore
	courses   courseLookup
	allocator *regno.Allocator
}

// NewStudentService creates a new student service instance
func NewStudentService(students studentStore, courses courseLookup, allocator *regno.Allocator) StudentService {
	return &studentServiceImpl{
		students:  students,
		courses:   courses,
		allocator: allocator,
	}
}

// Create registers a student and assigns their registration number. The
// number is computed from the resolved district, assigned course, and
// enrollment date; a collision with a concurrent creation is retried with
// a recomputed sequence.
func (s *studentServiceImpl) Create(ctx context.Context, actor access.Actor, req *dto.CreateStudentRequest) (*models.Student, error) {
	if err := access.CanCreate(actor, access.ResourceStudent); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperrors.NewValidationError("fullName", "full name cannot be empty")
	}
	if !validation.IsValidNIC(req.NICNumber) {
		return nil, apperrors.NewValidationError("nicNumber", "invalid NIC number")
	}
	if req.Email != "" && !validation.IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError("email", "invalid email address")
	}
	if req.MobileNo != "" && !validation.IsValidMobile(req.MobileNo) {
		return nil, apperrors.NewValidationError("mobileNo", "invalid mobile number")
	}

	district, err := access.CreateDistrict(actor, access.ResourceStudent, req.District)
	if err != nil {
		return nil, err
	}

	exists, err := s.students.NICExists(ctx, req.NICNumber, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrNICAlreadyExists
	}

	courseInfo, courseID, err := s.resolveCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	dob, err := helpers.ParseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewValidationError("dateOfBirth", "date must be YYYY-MM-DD")
	}
	enrollment, err := helpers.ParseOptionalDate(req.EnrollmentDate)
	if err != nil {
		return nil, apperrors.NewValidationError("enrollmentDate", "date must be YYYY-MM-DD")
	}

	status := models.EnrollmentStatus(req.EnrollmentStatus)
	if req.EnrollmentStatus == "" {
		status = models.EnrollmentPending
	}

	student := &models.Student{
		FullName:         strings.TrimSpace(req.FullName),
		NameWithInitials: req.NameWithInitials,
		Gender:           req.Gender,
		DateOfBirth:      dob,
		NICNumber:        strings.ToUpper(req.NICNumber),
		AddressLine:      req.AddressLine,
		District:         district,
		Village:          req.Village,
		MobileNo:         req.MobileNo,
		Email:            req.Email,
		CenterID:         req.CenterID,
		CourseID:         courseID,
		EnrollmentDate:   enrollment,
		EnrollmentStatus: status,
		TrainingReceived: req.TrainingReceived,
		CreatedBy:        &actor.ID,
		Qualifications:   buildQualifications(req.OLResults, req.ALResults),
	}

	for attempt := 0; ; attempt++ {
		number, err := s.allocator.Allocate(ctx, district, courseInfo, enrollment)
		if err != nil {
			return nil, err
		}
		student.RegistrationNo = number.String()
		student.DistrictCode = number.DistrictCode
		student.CourseCode = number.CourseCode
		student.BatchYear = number.BatchYear
		student.StudentNumber = number.StudentNumber
		student.RegistrationYear = number.RegistrationYear

		err = s.students.Create(ctx, student)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, apperrors.ErrRegistrationNoExists) || attempt >= allocateRetries {
			return nil, err
		}
		logger.Warn().
			Str("registrationNo", student.RegistrationNo).
			Int("attempt", attempt+1).
			Msg("Registration number collision, recomputing sequence")
	}
}

// PreviewRegistration computes the number a student would receive without
// reserving anything.
func (s *studentServiceImpl) PreviewRegistration(ctx context.Context, actor access.Actor, req *dto.RegistrationPreviewRequest) (*dto.RegistrationPreviewResponse, error) {
	district, err := access.CreateDistrict(actor, access.ResourceStudent, req.District)
	if err != nil {
		return nil, err
	}

	courseInfo, _, err := s.resolveCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := helpers.ParseOptionalDate(req.EnrollmentDate)
	if err != nil {
		return nil, apperrors.NewValidationError("enrollmentDate", "date must be YYYY-MM-DD")
	}

	number, err := s.allocator.Preview(ctx, district, courseInfo, enrollment, 0)
	if err != nil {
		return nil, err
	}

	return &dto.RegistrationPreviewResponse{
		RegistrationNo:   number.String(),
		DistrictCode:     number.DistrictCode,
		CourseCode:       number.CourseCode,
		BatchYear:        number.BatchYear,
		StudentNumber:    number.StudentNumber,
		RegistrationYear: number.RegistrationYear,
	}, nil
}

// GetByID retrieves a student in the actor's scope.
func (s *studentServiceImpl) GetByID(ctx context.Context, actor access.Actor, id int64) (*models.Student, error) {
	scope := access.ScopeFor(actor, access.ResourceStudent)
	return s.students.GetByID(ctx, scope, id)
}

// List retrieves students in the actor's scope.
func (s *studentServiceImpl) List(ctx context.Context, actor access.Actor, district, status, search string, courseID int64, offset, limit int) ([]*models.Student, int64, error) {
	scope := access.ScopeFor(actor, access.ResourceStudent)
	return s.students.List(ctx, scope, district, status, search, courseID, offset, limit)
}

// ListByCourse returns the roster of a course the actor can see.
func (s *studentServiceImpl) ListByCourse(ctx context.Context, actor access.Actor, courseID int64) ([]*models.Student, error) {
	if _, err := s.courses.GetByID(ctx, access.ScopeFor(actor, access.ResourceCourse), courseID); err != nil {
		return nil, err
	}
	return s.students.ListByCourse(ctx, courseID)
}

// Update modifies a student. The registration number and its segments are
// never regenerated, whatever changes.
func (s *studentServiceImpl) Update(ctx context.Context, actor access.Actor, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModify(actor, access.ResourceStudent, access.Target{District: student.District}); err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, apperrors.NewValidationError("fullName", "full name cannot be empty")
		}
		student.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.NameWithInitials != nil {
		student.NameWithInitials = *req.NameWithInitials
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.AddressLine != nil {
		student.AddressLine = *req.AddressLine
	}
	if req.Village != nil {
		student.Village = *req.Village
	}
	if req.MobileNo != nil {
		if *req.MobileNo != "" && !validation.IsValidMobile(*req.MobileNo) {
			return nil, apperrors.NewValidationError("mobileNo", "invalid mobile number")
		}
		student.MobileNo = *req.MobileNo
	}
	if req.Email != nil {
		if *req.Email != "" && !validation.IsValidEmail(*req.Email) {
			return nil, apperrors.NewValidationError("email", "invalid email address")
		}
		student.Email = *req.Email
	}
	if req.CenterID != nil {
		student.CenterID = req.CenterID
	}
	if req.CourseID != nil {
		student.CourseID = req.CourseID
	}
	if req.EnrollmentStatus != nil {
		student.EnrollmentStatus = models.EnrollmentStatus(*req.EnrollmentStatus)
	}
	if req.TrainingReceived != nil {
		student.TrainingReceived = *req.TrainingReceived
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}

	if req.OLResults != nil || req.ALResults != nil {
		quals := buildQualifications(req.OLResults, req.ALResults)
		if err := s.students.ReplaceQualifications(ctx, id, quals); err != nil {
			return nil, err
		}
		student.Qualifications = quals
	}
	return student, nil
}

// Delete removes a student in the actor's scope.
func (s *studentServiceImpl) Delete(ctx context.Context, actor access.Actor, id int64) error {
	student, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := access.CanModify(actor, access.ResourceStudent, access.Target{District: student.District}); err != nil {
		return err
	}
	return s.students.Delete(ctx, id)
}

// Stats aggregates student figures over the actor's visible scope.
func (s *studentServiceImpl) Stats(ctx context.Context, actor access.Actor) (*dto.StudentStatsResponse, error) {
	scope := access.ScopeFor(actor, access.ResourceStudent)
	stats, err := s.students.Stats(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &dto.StudentStatsResponse{
		TotalStudents:      stats.Total,
		TrainedStudents:    stats.Trained,
		EnrolledStudents:   stats.Enrolled,
		CompletedStudents:  stats.Completed,
		PendingStudents:    stats.Pending,
		RecentStudents:     stats.Recent,
		CenterDistribution: stats.CenterDistribution,
	}, nil
}

// ImportCSV registers students from an uploaded CSV. Every row runs
// through the same validation, district resolution, and number allocation
// as a single creation; failed rows are reported and skipped.
func (s *studentServiceImpl) ImportCSV(ctx context.Context, actor access.Actor, r io.Reader) (*dto.ImportResultResponse, error) {
	requests, problems, err := export.ParseStudentsCSV(r)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	result := &dto.ImportResultResponse{
		BatchID: uuid.New().String(),
		Errors:  problems,
	}
	for i, req := range requests {
		if _, err := s.Create(ctx, actor, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %v", i+1, req.NICNumber, err))
			continue
		}
		result.Imported++
	}

	logger.Info().
		Str("batchID", result.BatchID).
		Int("imported", result.Imported).
		Int("failed", len(result.Errors)).
		Msg("Student CSV import finished")
	return result, nil
}

// resolveCourse loads the allocator's view of an optional course. The
// lookup is unscoped: a data entry officer may register a student onto a
// course they cannot otherwise edit.
func (s *studentServiceImpl) resolveCourse(ctx context.Context, courseID *int64) (*regno.CourseInfo, *int64, error) {
	if courseID == nil {
		return nil, nil, nil
	}
	course, err := s.courses.GetByID(ctx, access.Scope{All: true}, *courseID)
	if err != nil {
		return nil, nil, err
	}
	return &regno.CourseInfo{ID: course.ID, Name: course.Name, Code: course.Code}, courseID, nil
}

func buildQualifications(ol, al []dto.QualificationInput) []models.Qualification {
	var quals []models.Qualification
	for _, q := range ol {
		quals = append(quals, models.Qualification{
			Type: models.QualificationOL, Subject: q.Subject, Grade: q.Grade, Year: q.Year,
		})
	}
	for _, q := range al {
		quals = append(quals, models.Qualification{
			Type: models.QualificationAL, Subject: q.Subject, Grade: q.Grade, Year: q.Year,
		})
	}
	return quals
}
