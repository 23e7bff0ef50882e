package dto

// QualificationInput is one O/L or A/L result row in a student payload.
type QualificationInput struct {
	Subject string `json:"subject" binding:"required"`
	Grade   string `json:"grade" binding:"required"`
	Year    int    `json:"year" binding:"required"`
}

// CreateStudentRequest is the payload for registering a student.
// District is required unless the caller's role forces it; EnrollmentDate
// and dates use YYYY-MM-DD.
type CreateStudentRequest struct {
	FullName         string               `json:"fullName" binding:"required"`
	NameWithInitials string               `json:"nameWithInitials"`
	Gender           string               `json:"gender"`
	DateOfBirth      string               `json:"dateOfBirth"`
	NICNumber        string               `json:"nicNumber" binding:"required"`
	AddressLine      string               `json:"addressLine"`
	District         string               `json:"district"`
	Village          string               `json:"village"`
	MobileNo         string               `json:"mobileNo"`
	Email            string               `json:"email"`
	CenterID         *int64               `json:"centerId"`
	CourseID         *int64               `json:"courseId"`
	EnrollmentDate   string               `json:"enrollmentDate"`
	EnrollmentStatus string               `json:"enrollmentStatus"`
	TrainingReceived bool                 `json:"trainingReceived"`
	OLResults        []QualificationInput `json:"olResults"`
	ALResults        []QualificationInput `json:"alResults"`
}

// UpdateStudentRequest is the payload for editing a student. The
// registration number is never touched by updates. Qualification slices,
// when present, replace the stored rows wholesale.
type UpdateStudentRequest struct {
	FullName         *string              `json:"fullName"`
	NameWithInitials *string              `json:"nameWithInitials"`
	Gender           *string              `json:"gender"`
	AddressLine      *string              `json:"addressLine"`
	District         *string              `json:"district"`
	Village          *string              `json:"village"`
	MobileNo         *string              `json:"mobileNo"`
	Email            *string              `json:"email"`
	CenterID         *int64               `json:"centerId"`
	CourseID         *int64               `json:"courseId"`
	EnrollmentStatus *string              `json:"enrollmentStatus"`
	TrainingReceived *bool                `json:"trainingReceived"`
	OLResults        []QualificationInput `json:"olResults"`
	ALResults        []QualificationInput `json:"alResults"`
}

// RegistrationPreviewRequest asks what registration number would be
// assigned for the given inputs. Nothing is reserved.
type RegistrationPreviewRequest struct {
	District       string `json:"district" binding:"required"`
	CourseID       *int64 `json:"courseId"`
	EnrollmentDate string `json:"enrollmentDate"`
}

// RegistrationPreviewResponse is the would-be registration number and its segments.
type RegistrationPreviewResponse struct {
	RegistrationNo   string `json:"registrationNo" example:"MTR/WP/24/0001/2024"`
	DistrictCode     string `json:"districtCode" example:"MTR"`
	CourseCode       string `json:"courseCode" example:"WP"`
	BatchYear        string `json:"batchYear" example:"24"`
	StudentNumber    string `json:"studentNumber" example:"0001"`
	RegistrationYear string `json:"registrationYear" example:"2024"`
}

// StudentStatsResponse is the dashboard aggregate over the caller's visible scope.
type StudentStatsResponse struct {
	TotalStudents      int64            `json:"totalStudents"`
	TrainedStudents    int64            `json:"trainedStudents"`
	EnrolledStudents   int64            `json:"enrolledStudents"`
	CompletedStudents  int64            `json:"completedStudents"`
	PendingStudents    int64            `json:"pendingStudents"`
	RecentStudents     int64            `json:"recentStudents"`
	CenterDistribution map[string]int64 `json:"centerDistribution"`
}

// ImportResultResponse reports the outcome of a CSV import.
type ImportResultResponse struct {
	BatchID  string   `json:"batchId"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}
