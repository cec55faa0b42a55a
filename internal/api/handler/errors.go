package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jobpilot/internal/api/middleware"
	"github.com/timmy/jobpilot/internal/domain"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var statusByCode = map[string]int{
	domain.CodeBadRequest:         http.StatusBadRequest,
	domain.CodeInvalidStatus:      http.StatusBadRequest,
	domain.CodeNotFound:           http.StatusNotFound,
	domain.CodePersistenceFailure: http.StatusInternalServerError,
	domain.CodeAgentFailure:       http.StatusBadGateway,
	domain.CodeStorageFailure:     http.StatusServiceUnavailable,
	domain.CodeInternal:           http.StatusInternalServerError,
}

// respondError writes err as JSON with the status its type maps to.
func respondError(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).WithField("code", code).Error("Request failed")
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// badRequest reports a malformed request body or query.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: domain.CodeBadRequest})
}
