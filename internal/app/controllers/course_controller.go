package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/services"
	"github.com/tharindu/vtcms/internal/middleware"
)

// CourseController handles course and approval operations
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// CreateCourse creates a course
// @Summary Create a course
// @Description Creates a course. Training officers' courses start pending with an approval request; managerial roles create approved courses directly.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller may not create courses"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid course data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.courseService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      course,
		Timestamp: time.Now(),
	})
}

// GetCourse retrieves one course
// @Summary Get course details
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	course, err := c.courseService.GetByID(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      course,
		Timestamp: time.Now(),
	})
}

// ListCourses lists courses visible to the caller
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param district query string false "Filter by district"
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse} "Courses retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	page, size, offset := pageWindow(ctx)

	courses, total, err := c.courseService.List(ctx, actor,
		ctx.Query("district"), ctx.Query("status"), ctx.Query("category"), offset, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      listResponse(courses, page, size, total),
		Timestamp: time.Now(),
	})
}

// ListAvailableCourses lists courses an instructor can claim
// @Summary List claimable courses
// @Description Approved courses in the instructor's district that have no instructor yet.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse} "Courses retrieved successfully"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an instructor"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/available [get]
func (c *CourseController) ListAvailableCourses(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	page, size, offset := pageWindow(ctx)

	courses, total, err := c.courseService.ListAvailable(ctx, actor, offset, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      listResponse(courses, page, size, total),
		Timestamp: time.Now(),
	})
}

// UpdateCourse edits a course
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller may not modify this course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid course data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.courseService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      course,
		Timestamp: time.Now(),
	})
}

// DeleteCourse removes a course
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Course deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Caller may not delete this course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.MessageResponse{Message: "Course deleted successfully"},
		Timestamp: time.Now(),
	})
}

// ClaimCourse lets an instructor claim an approved, unassigned course
// @Summary Claim a course
// @Description Instructor self-assignment. The course must be approved, unassigned, and in the instructor's district; a course claimed in the meantime returns 409.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course claimed successfully"
// @Failure 400 {object} dto.ErrorResponse "Course not approved or already assigned"
// @Failure 403 {object} dto.ErrorResponse "Course outside the instructor's district"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "A concurrent claim won"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/claim [post]
func (c *CourseController) ClaimCourse(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	course, err := c.courseService.Claim(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      course,
		Timestamp: time.Now(),
	})
}

// AssignInstructor assigns an instructor to a course
// @Summary Assign an instructor
// @Description Managerial assignment of an instructor to a course in the same district
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.AssignInstructorRequest true "Instructor to assign"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Instructor assigned successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or instructor district mismatch"
// @Failure 403 {object} dto.ErrorResponse "Caller may not assign instructors"
// @Failure 404 {object} dto.ErrorResponse "Course or instructor not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/instructor [put]
func (c *CourseController) AssignInstructor(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "course")
	if !ok {
		return
	}

	var req dto.AssignInstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid assignment data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	course, err := c.courseService.AssignInstructor(ctx, actor, id, req.InstructorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      course,
		Timestamp: time.Now(),
	})
}

// ListApprovals lists course approval requests
// @Summary List approval requests
// @Description Lists approval requests visible to the caller, optionally filtered by status
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (Pending, Approved, Rejected)"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse} "Approvals retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals [get]
func (c *CourseController) ListApprovals(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	page, size, offset := pageWindow(ctx)

	approvals, total, err := c.courseService.ListApprovals(ctx, actor, ctx.Query("status"), offset, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      listResponse(approvals, page, size, total),
		Timestamp: time.Now(),
	})
}

// DecideApproval records a decision on a pending approval request
// @Summary Decide an approval request
// @Description Approve, reject, or request changes on a pending course approval. Only managerial roles may decide; district managers only within their own district.
// @Tags approvals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Approval request ID"
// @Param action path string true "Decision" Enums(approve, reject, request_changes)
// @Param request body dto.ApprovalDecisionRequest false "Optional reviewer comments"
// @Success 200 {object} dto.APIResponse{data=models.CourseApproval} "Decision recorded"
// @Failure 400 {object} dto.ErrorResponse "Request already decided or unknown action"
// @Failure 403 {object} dto.ErrorResponse "Caller may not decide this request"
// @Failure 404 {object} dto.ErrorResponse "Approval request not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals/{id}/{action} [post]
func (c *CourseController) DecideApproval(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "approval")
	if !ok {
		return
	}

	action := services.ApprovalAction(ctx.Param("action"))
	switch action {
	case services.ActionApprove, services.ActionReject, services.ActionRequestChanges:
	default:
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Unknown approval action")
		errorDetail = errorDetail.WithDetails("Action must be approve, reject or request_changes")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.ApprovalDecisionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid decision data")
			errorDetail = errorDetail.WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
	}

	approval, err := c.courseService.DecideApproval(ctx, actor, id, action, req.Comments)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      approval,
		Timestamp: time.Now(),
	})
}
