package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
)

// ErrorBody is the error contract returned to clients.
type ErrorBody struct {
	ErrorCode  string                `json:"errorCode"`
	Message    string                `json:"message"`
	Timestamp  time.Time             `json:"timestamp"`
	Violations []appErrors.Violation `json:"violations,omitempty"`
}

// Now is overridable in tests.
var Now = time.Now

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Error sends an error response converting the error to the common structure.
// The wrapped cause is attached to the gin context for logging only.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorBody{
		ErrorCode:  appErr.Code,
		Message:    appErr.Message,
		Timestamp:  Now().UTC(),
		Violations: appErr.Violations,
	})
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
