package middlewares

import (
	"fmt"
	"runtime/debug"

	"pragatipath-be/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic in a handler into a 500 response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				if !c.Writer.Written() {
					utils.RespondError(c, nil, utils.Internal("Something went wrong", fmt.Errorf("panic: %v", r)))
				} else {
					c.Abort()
				}
			}
		}()
		c.Next()
	}
}
