package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CenterRepository     *CenterRepository
	CourseRepository     *CourseRepository
	ApprovalRepository   *ApprovalRepository
	StudentRepository    *StudentRepository
	AttendanceRepository *AttendanceRepository
	TokenRepository      *TokenRepository
	ReportRepository     *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		CenterRepository:     NewCenterRepository(db),
		CourseRepository:     NewCourseRepository(db),
		ApprovalRepository:   NewApprovalRepository(db),
		StudentRepository:    NewStudentRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
		TokenRepository:      NewTokenRepository(db),
		ReportRepository:     NewReportRepository(db),
	}
}
