// Package apperr defines the operational errors handlers may fail with.
// Anything that isn't an *Error is treated as unexpected by the terminal
// error translator and flattened outside development mode.
package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// Abort records err on the context and stops the handler chain. The error
// translator middleware renders the response envelope.
func Abort(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
