package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/controllers"
	"github.com/tharindu/vtcms/internal/app/models"
	"github.com/tharindu/vtcms/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	centerController *controllers.CenterController,
	courseController *controllers.CourseController,
	studentController *controllers.StudentController,
	attendanceController *controllers.AttendanceController,
	reportController *controllers.ReportController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.PUT("/auth/password", authController.ChangePassword)

		users := authenticated.Group("/users")
		{
			users.GET("/me", userController.GetProfile)
			users.GET("/instructors", userController.ListInstructors)

			usersAdmin := users.Group("")
			usersAdmin.Use(authMiddleware.RoleRequired(
				models.RoleAdmin, models.RoleHeadOffice, models.RoleDistrictManager))
			{
				usersAdmin.POST("", userController.CreateUser)
				usersAdmin.GET("", userController.ListUsers)
				usersAdmin.GET("/:id", userController.GetUser)
				usersAdmin.PUT("/:id", userController.UpdateUser)
				usersAdmin.DELETE("/:id", userController.DeleteUser)
			}
		}

		centers := authenticated.Group("/centers")
		{
			centers.GET("", centerController.ListCenters)
			centers.GET("/:id", centerController.GetCenter)

			centersManaged := centers.Group("")
			centersManaged.Use(authMiddleware.RoleRequired(
				models.RoleAdmin, models.RoleHeadOffice, models.RoleDistrictManager))
			{
				centersManaged.POST("", centerController.CreateCenter)
				centersManaged.PUT("/:id", centerController.UpdateCenter)
				centersManaged.DELETE("/:id", centerController.DeleteCenter)
			}
		}

		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.GET("/available",
				authMiddleware.RoleRequired(models.RoleInstructor),
				courseController.ListAvailableCourses)
			courses.GET("/:id", courseController.GetCourse)
			courses.POST("", courseController.CreateCourse)
			courses.PUT("/:id", courseController.UpdateCourse)
			courses.DELETE("/:id", courseController.DeleteCourse)

			courses.POST("/:id/claim",
				authMiddleware.RoleRequired(models.RoleInstructor),
				courseController.ClaimCourse)
			courses.PUT("/:id/instructor",
				authMiddleware.RoleRequired(models.RoleAdmin, models.RoleHeadOffice, models.RoleDistrictManager),
				courseController.AssignInstructor)
		}

		attendance := authenticated.Group("")
		{
			attendance.POST("/attendance", attendanceController.RecordAttendance)
			attendance.POST("/courses/:id/attendance/bulk", attendanceController.BulkRecordAttendance)
			attendance.GET("/courses/:id/attendance", attendanceController.ListAttendance)
			attendance.GET("/courses/:id/attendance/roster", attendanceController.GetRoster)
			attendance.GET("/courses/:id/attendance/summary", attendanceController.GetSummary)
			attendance.GET("/courses/:id/attendance/summaries", attendanceController.GetSummaryRange)
			attendance.GET("/courses/:id/attendance/export", attendanceController.ExportAttendance)
		}

		approvals := authenticated.Group("/approvals")
		{
			approvals.GET("", courseController.ListApprovals)
			approvals.POST("/:id/:action",
				authMiddleware.RoleRequired(models.RoleAdmin, models.RoleHeadOffice, models.RoleDistrictManager),
				courseController.DecideApproval)
		}

		students := authenticated.Group("/students")
		{
			students.GET("", studentController.ListStudents)
			students.GET("/stats", studentController.GetStats)
			students.GET("/export", studentController.ExportStudents)
			students.POST("", studentController.CreateStudent)
			students.POST("/registration-preview", studentController.PreviewRegistration)
			students.POST("/import", studentController.ImportStudents)
			students.GET("/:id", studentController.GetStudent)
			students.PUT("/:id", studentController.UpdateStudent)
			students.DELETE("/:id", studentController.DeleteStudent)
		}

		reports := authenticated.Group("/reports")
		{
			reports.GET("/overview", reportController.GetOverview)
			reports.GET("/district", reportController.GetDistrictReport)
		}
	}
}
