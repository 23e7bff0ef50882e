package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/app/services"
	"github.com/tharindu/vtcms/internal/middleware"
)

// ReportController handles dashboard and report operations
type ReportController struct {
	reportService services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// GetOverview returns the dashboard overview
// @Summary Dashboard overview
// @Description Aggregate figures over the caller's visible scope. District-scoped roles see their district only.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.OverviewResponse} "Overview retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/overview [get]
func (c *ReportController) GetOverview(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	overview, err := c.reportService.Overview(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      overview,
		Timestamp: time.Now(),
	})
}

// GetDistrictReport returns the per-district report
// @Summary District report
// @Description Detailed figures for one district. Admin and head office pass the district explicitly; district-scoped roles always get their own.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param district query string false "District name (admin and head office only)"
// @Success 200 {object} dto.APIResponse{data=dto.DistrictReportResponse} "Report retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "District missing for an unscoped caller"
// @Failure 403 {object} dto.ErrorResponse "Caller may not view district reports"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/district [get]
func (c *ReportController) GetDistrictReport(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	report, err := c.reportService.DistrictReport(ctx, actor, ctx.Query("district"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      report,
		Timestamp: time.Now(),
	})
}
