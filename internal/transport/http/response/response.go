package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	appsvc "pettech-backend/internal/app"
	"pettech-backend/internal/errs"
)

// LoggerKey is the gin context key holding the request-scoped *slog.Logger.
const LoggerKey = "logger"

// ErrorBody is the only error shape clients see.
type ErrorBody struct {
	Detail string `json:"detail"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, httpStatus int, detail string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Detail: detail})
}

// Fail maps err onto a status: malformed input is 400, a credential mismatch
// is 401 and anything else is 500 carrying the raw error text.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appsvc.ErrInvalidInput):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appsvc.ErrInvalidCredential):
		Error(c, http.StatusUnauthorized, "Invalid email or password")
	default:
		Logger(c).Error("request failed", "path", c.FullPath(), "err", errs.Loggable(err))
		Error(c, http.StatusInternalServerError, "An error occurred: "+err.Error())
	}
}

// Logger returns the logger the request-id middleware stored, or the default.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
