package dto

// MonthlyEnrollment is one month of the enrollment trend series.
type MonthlyEnrollment struct {
	Month    string `json:"month" example:"Mar"`
	Students int64  `json:"students"`
}

// CenterPerformance is one center's completion-rate band.
type CenterPerformance struct {
	CenterName     string  `json:"centerName"`
	StudentCount   int64   `json:"studentCount"`
	CompletionRate float64 `json:"completionRate"`
	Performance    string  `json:"performance" example:"Good"`
}

// DistrictReportResponse is the district manager's report over their district.
type DistrictReportResponse struct {
	District          string              `json:"district"`
	TotalStudents     int64               `json:"totalStudents"`
	TotalCenters      int64               `json:"totalCenters"`
	ActiveCourses     int64               `json:"activeCourses"`
	EnrollmentStats   map[string]int64    `json:"enrollmentStats"`
	TrainingStats     map[string]int64    `json:"trainingStats"`
	PendingApprovals  int64               `json:"pendingApprovals"`
	EnrollmentTrend   []MonthlyEnrollment `json:"enrollmentTrend"`
	CenterPerformance []CenterPerformance `json:"centerPerformance"`
}

// OverviewResponse is the admin/head-office dashboard aggregate.
type OverviewResponse struct {
	TotalCenters     int64               `json:"totalCenters"`
	ActiveStudents   int64               `json:"activeStudents"`
	TotalInstructors int64               `json:"totalInstructors"`
	CompletionRate   float64             `json:"completionRate"`
	EnrollmentTrend  []MonthlyEnrollment `json:"enrollmentTrend"`
	PendingApprovals int64               `json:"pendingApprovals"`
}
