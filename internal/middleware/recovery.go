package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
	"github.com/noah-isme/noticeboard-api/pkg/response"
)

// Recovery turns a panic into an INTERNAL_SERVER_ERROR response. The panic
// value is logged, never returned to the client.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"))
		response.Abort(c, appErrors.CloneWrap(appErrors.ErrInternal, fmt.Errorf("panic: %v", recovered), ""))
	})
}
