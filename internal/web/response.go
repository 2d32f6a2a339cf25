package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of a successful request.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse is the JSON envelope of a failed request.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PaginationQuery holds the paging parameters of list endpoints.
type PaginationQuery struct {
	Limit  int `form:"limit,default=100"`
	Offset int `form:"offset,default=0"`
}

func SendSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func SendError(c *gin.Context, httpStatus int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    httpStatus,
			Message: message,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	SendError(c, http.StatusServiceUnavailable, message)
}

func InternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}
