package services

// Services defined in this package:
// - AuthService: login, token refresh, logout, password changes
// - UserService: account provisioning and management
// - CenterService: training center management
// - CourseService: course lifecycle, claiming, and approvals
// - StudentService: student registration, numbering, and CSV import
// - AttendanceService: attendance marking and daily roll-ups
// - ReportService: dashboards and district reports
