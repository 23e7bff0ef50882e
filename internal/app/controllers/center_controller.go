package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/services"
	"github.com/tharindu/vtcms/internal/middleware"
)

// CenterController handles training center operations
type CenterController struct {
	centerService services.CenterService
}

// NewCenterController creates a new CenterController
func NewCenterController(centerService services.CenterService) *CenterController {
	return &CenterController{centerService: centerService}
}

// CreateCenter registers a training center
// @Summary Create a training center
// @Description Creates a center. District-scoped roles have the district forced to their own.
// @Tags centers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCenterRequest true "Center information"
// @Success 201 {object} dto.APIResponse{data=models.Center} "Center created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller may not create centers"
// @Failure 409 {object} dto.ErrorResponse "Center already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers [post]
func (c *CenterController) CreateCenter(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req dto.CreateCenterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid center data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	center, err := c.centerService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      center,
		Timestamp: time.Now(),
	})
}

// GetCenter retrieves one center
// @Summary Get center details
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Center ID"
// @Success 200 {object} dto.APIResponse{data=models.Center} "Center retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Center not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers/{id} [get]
func (c *CenterController) GetCenter(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "center")
	if !ok {
		return
	}

	center, err := c.centerService.GetByID(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      center,
		Timestamp: time.Now(),
	})
}

// ListCenters lists centers visible to the caller
// @Summary List centers
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param district query string false "Filter by district"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse} "Centers retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers [get]
func (c *CenterController) ListCenters(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	page, size, offset := pageWindow(ctx)

	centers, total, err := c.centerService.List(ctx, actor, ctx.Query("district"), ctx.Query("status"), offset, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      listResponse(centers, page, size, total),
		Timestamp: time.Now(),
	})
}

// UpdateCenter edits a center
// @Summary Update a center
// @Tags centers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Center ID"
// @Param request body dto.UpdateCenterRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Center} "Center updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Caller may not modify this center"
// @Failure 404 {object} dto.ErrorResponse "Center not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers/{id} [put]
func (c *CenterController) UpdateCenter(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "center")
	if !ok {
		return
	}

	var req dto.UpdateCenterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid center data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	center, err := c.centerService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      center,
		Timestamp: time.Now(),
	})
}

// DeleteCenter removes a center
// @Summary Delete a center
// @Tags centers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Center ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Center deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Caller may not delete this center"
// @Failure 404 {object} dto.ErrorResponse "Center not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /centers/{id} [delete]
func (c *CenterController) DeleteCenter(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "center")
	if !ok {
		return
	}

	if err := c.centerService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.MessageResponse{Message: "Center deleted successfully"},
		Timestamp: time.Now(),
	})
}
