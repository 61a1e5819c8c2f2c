// Package handler holds the HTTP response envelope shared by all
// endpoint packages.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kineayuda/booking-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes err with the status code derived from its application
// error code. Only the AppError message reaches the client; wrapped
// causes stay server-side.
func Error(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, NewErrorResponse(message))
}
