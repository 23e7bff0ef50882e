package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tharindu/vtcms/internal/app/models/dto"
	"github.com/tharindu/vtcms/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto HTTP responses. Every rule
// violation carries its own message through a CustomError, so callers see
// "Can only update courses in your district" rather than a generic 403.
func HandleAPIError(c *gin.Context, err error) {
	message := func(fallback string) string {
		var custom *apperrors.CustomError
		if errors.As(err, &custom) && custom.Message != "" {
			return custom.Message
		}
		return fallback
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		detail := dto.NewErrorDetail(code, message(fallback))
		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Details != nil {
				detail = detail.WithDetails(custom.Details)
			}
		}
		c.JSON(status, dto.NewErrorResponse(detail))
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request")
	case errors.Is(err, apperrors.ErrInvalidStatus):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid attendance status")
	case errors.Is(err, apperrors.ErrCourseNotApproved):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Only approved courses can be assigned")
	case errors.Is(err, apperrors.ErrCourseNotPending):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Only pending courses can be edited")
	case errors.Is(err, apperrors.ErrDistrictRequired):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "District is required")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrNICAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "A student with this NIC number already exists")
	case errors.Is(err, apperrors.ErrRegistrationNoExists):
		respond(http.StatusConflict, dto.ErrorCodeConflict, "Registration number conflict, please retry")
	case errors.Is(err, apperrors.ErrCourseCodeExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "A course with this code already exists")
	case errors.Is(err, apperrors.ErrCenterAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "A center with this name already exists")
	case errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeConflict, "Resource conflict")
	case errors.Is(err, apperrors.ErrUserNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrInstructorNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Instructor not found")
	case errors.Is(err, apperrors.ErrCenterNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Center not found")
	case errors.Is(err, apperrors.ErrCourseNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found")
	case errors.Is(err, apperrors.ErrApprovalNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Approval request not found")
	case errors.Is(err, apperrors.ErrStudentNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrAttendanceNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Attendance record not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrCourseAlreadyAssigned):
		respond(http.StatusConflict, dto.ErrorCodeConflict, "Course is already assigned to an instructor")
	default:
		// Unknown errors reveal nothing about their cause.
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
