package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/access"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/middleware"
	"github.com/tharindu/vtcms/internal/pkg/helpers"
)

// pageWindow reads page/pageSize query parameters and converts them to an
// offset/limit pair.
func pageWindow(ctx *gin.Context) (page, size, offset int) {
	page, size = helpers.ParsePaginationParams(ctx)
	off, limit := helpers.CalculateOffsetLimit(page, size)
	return page, limit, int(off)
}

// listResponse builds the standard paginated envelope.
func listResponse(items interface{}, page, size int, total int64) *dto.ListResponse {
	return &dto.ListResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
}

// queryInt64 reads an optional integer query parameter, returning 0 when
// absent or malformed.
func queryInt64(ctx *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(ctx.Query(name), 10, 64)
	return v
}

// pathID parses the :id (or named) path parameter as an int64. On failure it
// writes the 400 response and returns false.
func pathID(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID")
		errorDetail = errorDetail.WithDetails(label + " ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// requireActor extracts the authenticated actor set by the JWT middleware.
// On failure it writes the 401 response and returns false.
func requireActor(ctx *gin.Context) (access.Actor, bool) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return access.Actor{}, false
	}
	return actor, true
}
