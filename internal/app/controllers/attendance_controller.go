package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/services"
	"github.com/tharindu/vtcms/internal/middleware"
	"github.com/tharindu/vtcms/internal/pkg/export"
	"github.com/tharindu/vtcms/internal/pkg/logger"
)

// AttendanceController handles attendance recording and roll-up operations
type AttendanceController struct {
	attendanceService services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: attendanceService}
}

// RecordAttendance writes one attendance mark
// @Summary Record attendance
// @Description Records one mark for a (student, course, date) key. A repeat write for the same key overwrites the earlier mark and recomputes the daily summary.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordAttendanceRequest true "Attendance mark"
// @Success 200 {object} dto.APIResponse{data=models.Attendance} "Attendance recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid status, date or check-in time"
// @Failure 403 {object} dto.ErrorResponse "Caller may not record for this course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attendance [post]
func (c *AttendanceController) RecordAttendance(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.RecordAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid attendance data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	record, err := c.attendanceService.Record(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}

// BulkRecordAttendance writes marks for many students of one course
// @Summary Bulk record attendance
// @Description Records marks for many students of one course on one date. Rows that fail validation are reported and skipped; the rest are written.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.BulkAttendanceRequest true "Attendance marks"
// @Success 200 {object} dto.APIResponse{data=dto.BulkAttendanceResponse} "Bulk write completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller may not record for this course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/attendance/bulk [post]
func (c *AttendanceController) BulkRecordAttendance(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	var req dto.BulkAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid attendance data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.attendanceService.BulkRecord(ctx, actor, courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// ListAttendance lists attendance rows for a course
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse} "Attendance retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/attendance [get]
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}
	page, size, offset := pageWindow(ctx)

	records, total, err := c.attendanceService.List(ctx, actor, courseID, ctx.Query("date"), offset, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      listResponse(records, page, size, total),
		Timestamp: time.Now(),
	})
}

// GetRoster returns the course roster merged with the day's marks
// @Summary Course roster for a date
// @Description Lists every enrolled student of the course with their mark for the given date, unmarked students included
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]dto.RosterEntry} "Roster retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/attendance/roster [get]
func (c *AttendanceController) GetRoster(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	roster, err := c.attendanceService.Roster(ctx, actor, courseID, ctx.Query("date"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      roster,
		Timestamp: time.Now(),
	})
}

// GetSummary returns one day's attendance summary for a course
// @Summary Daily attendance summary
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=models.AttendanceSummary} "Summary retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 404 {object} dto.ErrorResponse "No summary for this course and date"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/attendance/summary [get]
func (c *AttendanceController) GetSummary(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	summary, err := c.attendanceService.Summary(ctx, actor, courseID, ctx.Query("date"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      summary,
		Timestamp: time.Now(),
	})
}

// GetSummaryRange returns summaries for a course over a date range
// @Summary Attendance summaries over a range
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]models.AttendanceSummary} "Summaries retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/attendance/summaries [get]
func (c *AttendanceController) GetSummaryRange(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	summaries, err := c.attendanceService.SummaryRange(ctx, actor, courseID, ctx.Query("from"), ctx.Query("to"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      summaries,
		Timestamp: time.Now(),
	})
}

// ExportAttendance streams a course's attendance rows as CSV
// @Summary Export attendance to CSV
// @Tags attendance
// @Produce text/csv
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/attendance/export [get]
func (c *AttendanceController) ExportAttendance(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	records, _, err := c.attendanceService.List(ctx, actor, courseID, ctx.Query("date"), 0, exportLimit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := export.WriteAttendanceCSV(ctx.Writer, records); err != nil {
		logger.Error().Err(err).Msg("Failed to stream attendance CSV export")
	}
}
