package models

import "time"

// Student defines the student model based on the 'students' table.
// The registration number is allocated once at creation and never
// regenerated afterwards; its segments are stored individually so they
// can be queried on their own.
type Student struct {
	ID               int64            `json:"id" db:"id"`
	RegistrationNo   string           `json:"registrationNo" db:"registration_no" example:"MTR/WP/24/0001/2024"`
	DistrictCode     string           `json:"districtCode" db:"district_code"`
	CourseCode       string           `json:"courseCode" db:"course_code"`
	BatchYear        string           `json:"batchYear" db:"batch_year"`
	StudentNumber    string           `json:"studentNumber" db:"student_number"`
	RegistrationYear string           `json:"registrationYear" db:"registration_year"`
	FullName         string           `json:"fullName" db:"full_name"`
	NameWithInitials string           `json:"nameWithInitials" db:"name_with_initials"`
	Gender           string           `json:"gender" db:"gender"`
	DateOfBirth      *time.Time       `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	NICNumber        string           `json:"nicNumber" db:"nic_number"`
	AddressLine      string           `json:"addressLine" db:"address_line"`
	District         string           `json:"district" db:"district"`
	Village          string           `json:"village" db:"village"`
	MobileNo         string           `json:"mobileNo" db:"mobile_no"`
	Email            string           `json:"email" db:"email"`
	CenterID         *int64           `json:"centerId,omitempty" db:"center_id"`
	CourseID         *int64           `json:"courseId,omitempty" db:"course_id"`
	EnrollmentDate   *time.Time       `json:"enrollmentDate,omitempty" db:"enrollment_date"`
	EnrollmentStatus EnrollmentStatus `json:"enrollmentStatus" db:"enrollment_status"`
	TrainingReceived bool             `json:"trainingReceived" db:"training_received"`
	CreatedBy        *int64           `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`

	Center         *Center         `json:"center,omitempty"` // Relation, no db tag
	Course         *Course         `json:"course,omitempty"` // Relation, no db tag
	Qualifications []Qualification `json:"qualifications,omitempty"`
}

// Qualification is one G.C.E. O/L or A/L result row owned by a student.
type Qualification struct {
	ID        int64             `json:"id" db:"id"`
	StudentID int64             `json:"studentId" db:"student_id"`
	Type      QualificationType `json:"type" db:"type" example:"OL"`
	Subject   string            `json:"subject" db:"subject"`
	Grade     string            `json:"grade" db:"grade"`
	Year      int               `json:"year" db:"year"`
}
