package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string             `json:"error"`
	Code  apierror.ErrorCode `json:"code"`
	Field string             `json:"field,omitempty"`
}

// Response is the body of every successful request.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondError(c *gin.Context, err error) {
	apiErr := apierror.From(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			logger.WithRequestID(requestID(c)),
		)
	}
	c.AbortWithStatusJSON(apiErr.Status, ErrorResponse{
		Error: apiErr.Message,
		Code:  apiErr.Code,
		Field: apiErr.Field,
	})
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Message: message, Data: data})
}
