// Package response implements the API envelope shared with the upstream
// platform: {status: bool, message?: string, data?: T}. status:false marks
// an application-level failure regardless of the HTTP status code, so the
// SPA consumes one shape end to end.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

type envelope struct {
	Status     bool        `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK sends a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Status: true, Data: data})
}

// OKMsg sends a 200 success envelope with a message and no data.
func OKMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Status: true, Message: message})
}

// Paged sends a paginated success envelope.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, envelope{Status: true, Data: data, Pagination: &pagination})
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Status: true, Data: data})
}

// Warning sends a 200 envelope with status:false for rejected-but-harmless
// operations (cap exceeded, control busy): the SPA shows a warning toast and
// keeps its state.
func Warning(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Status: false, Message: message, Data: data})
}

// BadRequest sends a 400 failure envelope.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Message: message})
}

// Unauthorized sends a 401 failure envelope.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Message: "login required"})
}

// Forbidden sends a 403 failure envelope.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, envelope{Message: message})
}

// NotFound sends a 404 failure envelope.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "not found"
	}
	c.AbortWithStatusJSON(http.StatusNotFound, envelope{Message: message})
}

// Conflict sends a 409 failure envelope.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, envelope{Message: message})
}

// UnprocessableEntity sends a 422 failure envelope.
func UnprocessableEntity(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, envelope{Message: message})
}

// TooManyRequests sends a 429 failure envelope.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, envelope{Message: message})
}

// InternalError sends a 500 failure envelope.
func InternalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, envelope{Message: err.Error()})
}

// MethodNotAllowed sends a 405 failure envelope.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, envelope{Message: "method not allowed"})
}
