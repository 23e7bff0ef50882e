package services

import (
	"context"
	"time"

	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/repositories"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

// trendMonths is how far back dashboard trend series reach.
const trendMonths = 6

// ReportService defines the interface for reporting operations
type ReportService interface {
	Overview(ctx context.Context, actor access.Actor) (*dto.OverviewResponse, error)
	DistrictReport(ctx context.Context, actor access.Actor, district string) (*dto.DistrictReportResponse, error)
}

type reportStore interface {
	CountCenters(ctx context.Context, district string) (int64, error)
	CountCoursesByStatus(ctx context.Context, district string, status models.CourseStatus) (int64, error)
	CountUsersByRole(ctx context.Context, district string, role models.RoleType) (int64, error)
	CountPendingApprovals(ctx context.Context, district string) (int64, error)
	StudentStatusCounts(ctx context.Context, district string) (map[string]int64, error)
	TrainingCounts(ctx context.Context, district string) (map[string]int64, error)
	EnrollmentTrend(ctx context.Context, district string, months int) ([]repositories.MonthPoint, error)
	CenterPerformance(ctx context.Context, district string) ([]repositories.CenterFigures, error)
	CompletionRate(ctx context.Context, district string) (float64, error)
}

// reportServiceImpl implements the ReportService interface
type reportServiceImpl struct {
	reports reportStore
}

// NewReportService creates a new report service instance
func NewReportService(reports reportStore) ReportService {
	return &reportServiceImpl{reports: reports}
}

// Overview builds the head-office dashboard. District-scoped roles get
// the same figures restricted to their district.
func (s *reportServiceImpl) Overview(ctx context.Context, actor access.Actor) (*dto.OverviewResponse, error) {
	district := reportDistrict(actor)

	centers, err := s.reports.CountCenters(ctx, district)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.reports.StudentStatusCounts(ctx, district)
	if err != nil {
		return nil, err
	}
	instructors, err := s.reports.CountUsersByRole(ctx, district, models.RoleInstructor)
	if err != nil {
		return nil, err
	}
	completion, err := s.reports.CompletionRate(ctx, district)
	if err != nil {
		return nil, err
	}
	trend, err := s.reports.EnrollmentTrend(ctx, district, trendMonths)
	if err != nil {
		return nil, err
	}
	pending, err := s.reports.CountPendingApprovals(ctx, district)
	if err != nil {
		return nil, err
	}

	return &dto.OverviewResponse{
		TotalCenters:     centers,
		ActiveStudents:   statusCounts[string(models.EnrollmentEnrolled)],
		TotalInstructors: instructors,
		CompletionRate:   completion,
		EnrollmentTrend:  formatTrend(trend),
		PendingApprovals: pending,
	}, nil
}

// DistrictReport builds the per-district report. District-scoped actors
// always report on their own district; unrestricted roles pick one.
func (s *reportServiceImpl) DistrictReport(ctx context.Context, actor access.Actor, district string) (*dto.DistrictReportResponse, error) {
	switch actor.Role {
	case models.RoleAdmin, models.RoleHeadOffice:
		if district == "" {
			return nil, apperrors.NewValidationError("district", "district is required")
		}
	case models.RoleDistrictManager, models.RoleTrainingOfficer:
		district = actor.District
	default:
		return nil, apperrors.NewForbiddenError("your role may not view district reports")
	}

	statusCounts, err := s.reports.StudentStatusCounts(ctx, district)
	if err != nil {
		return nil, err
	}
	var totalStudents int64
	for _, count := range statusCounts {
		totalStudents += count
	}

	centers, err := s.reports.CountCenters(ctx, district)
	if err != nil {
		return nil, err
	}
	activeCourses, err := s.reports.CountCoursesByStatus(ctx, district, models.CourseActive)
	if err != nil {
		return nil, err
	}
	training, err := s.reports.TrainingCounts(ctx, district)
	if err != nil {
		return nil, err
	}
	pending, err := s.reports.CountPendingApprovals(ctx, district)
	if err != nil {
		return nil, err
	}
	trend, err := s.reports.EnrollmentTrend(ctx, district, trendMonths)
	if err != nil {
		return nil, err
	}
	figures, err := s.reports.CenterPerformance(ctx, district)
	if err != nil {
		return nil, err
	}

	performance := make([]dto.CenterPerformance, 0, len(figures))
	for _, f := range figures {
		var rate float64
		if f.StudentCount > 0 {
			rate = float64(f.CompletedCount) / float64(f.StudentCount) * 100
		}
		performance = append(performance, dto.CenterPerformance{
			CenterName:     f.CenterName,
			StudentCount:   f.StudentCount,
			CompletionRate: rate,
			Performance:    performanceBand(rate),
		})
	}

	return &dto.DistrictReportResponse{
		District:          district,
		TotalStudents:     totalStudents,
		TotalCenters:      centers,
		ActiveCourses:     activeCourses,
		EnrollmentStats:   statusCounts,
		TrainingStats:     training,
		PendingApprovals:  pending,
		EnrollmentTrend:   formatTrend(trend),
		CenterPerformance: performance,
	}, nil
}

// reportDistrict narrows dashboard figures for district-scoped roles.
func reportDistrict(actor access.Actor) string {
	switch actor.Role {
	case models.RoleDistrictManager, models.RoleTrainingOfficer, models.RoleDataEntry:
		return actor.District
	}
	return ""
}

// formatTrend turns YYYY-MM keyed points into short month labels.
func formatTrend(points []repositories.MonthPoint) []dto.MonthlyEnrollment {
	trend := make([]dto.MonthlyEnrollment, 0, len(points))
	for _, p := range points {
		label := p.Month
		if t, err := time.Parse("2006-01", p.Month); err == nil {
			label = t.Format("Jan")
		}
		trend = append(trend, dto.MonthlyEnrollment{Month: label, Students: p.Count})
	}
	return trend
}

func performanceBand(rate float64) string {
	switch {
	case rate >= 75:
		return "Excellent"
	case rate >= 50:
		return "Good"
	case rate >= 25:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
