package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

// ErrorHandler отвечает по последней ошибке из c.Errors, если обработчик сам ничего не записал.
// Внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		appErr := apperror.From(err.Err)

		entry := logger.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			entry.Error("request error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		entry.Debug("request error")
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
	}
}
