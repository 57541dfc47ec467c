package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// respondServiceError maps the service-layer status codes onto HTTP.
func respondServiceError(c *gin.Context, err error) {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.InvalidArgument:
			c.JSON(http.StatusBadRequest, errorResponse(s.Message()))
		case codes.NotFound:
			c.JSON(http.StatusNotFound, errorResponse(s.Message()))
		case codes.FailedPrecondition:
			c.JSON(http.StatusBadRequest, errorResponse(s.Message()))
		case codes.AlreadyExists:
			c.JSON(http.StatusConflict, errorResponse(s.Message()))
		default:
			c.JSON(http.StatusInternalServerError, errorResponse("Service error: "+s.Message()))
		}
	} else {
		c.JSON(http.StatusInternalServerError, errorResponse("Unknown service error"))
	}
	c.Abort()
}
