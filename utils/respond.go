package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError writes err as {"error", "code"} and aborts the request.
// Internal failures are logged with their cause; the client only sees the message.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr := AsAppError(err)
	status := appErr.HTTPStatus()

	if appErr.Code == CodeInternal && logger != nil {
		logger.Error(appErr.Message,
			zap.Error(appErr.Cause),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// RequestIDKey is the gin context key holding the request correlation id.
const RequestIDKey = "request_id"
