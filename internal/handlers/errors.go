package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pkgindex-web/internal/apperr"
	"pkgindex-web/internal/config"
	"pkgindex-web/internal/middleware"
	"pkgindex-web/internal/templates"
)

// ErrorResponse is the JSON error body for API and admin clients
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

// ErrorFormatter renders every error attached to a request. It is the last
// stop for failures and never panics.
type ErrorFormatter struct {
	cfg    *config.Config
	logger logrus.FieldLogger
}

// NewErrorFormatter creates a new error formatter
func NewErrorFormatter(cfg *config.Config, logger logrus.FieldLogger) *ErrorFormatter {
	return &ErrorFormatter{cfg: cfg, logger: logger}
}

// Middleware runs the chain and formats the last attached error, if any.
func (f *ErrorFormatter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if last := c.Errors.Last(); last != nil {
			f.Format(c, last.Err)
		}
	}
}

// NotFound is the router's no-route handler.
func (f *ErrorFormatter) NotFound(c *gin.Context) {
	middleware.Fail(c, apperr.NotFound())
}

// MethodNotAllowed is the router's no-method handler.
func (f *ErrorFormatter) MethodNotAllowed(c *gin.Context) {
	middleware.Fail(c, apperr.MethodNotAllowed(c.Request.Method))
}

// Format writes the response for err. Browser paths get an HTML page; paths
// under /api/ and /admin/ get JSON with the error's key, message and status.
// The prefixes are matched on the path below server.root_path, so with a
// root path of /pypi a request for /pypi/api/x is answered with JSON.
func (f *ErrorFormatter) Format(c *gin.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.WithFields(logrus.Fields{
				"request_id": c.GetString(middleware.RequestIDKey),
				"path":       c.Request.URL.Path,
				"panic":      fmt.Sprint(r),
			}).Error("Error formatter failed")
			if !c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}
	}()

	message := apperr.MessageOf(err)
	trace := apperr.StackOf(err)

	f.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     apperr.StatusOf(err),
		"error":      err.Error(),
		"stacktrace": trace,
	}).Error(message)

	if c.Writer.Written() {
		return
	}

	if !IsMachinePath(relativePath(c, f.cfg)) {
		httpErr, ok := apperr.AsHTTPError(err)
		if !ok {
			httpErr = apperr.ServerError(message)
		}
		renderHTTPError(c, httpErr)
		return
	}

	body := ErrorResponse{
		Error:   apperr.KeyOf(err),
		Message: message,
	}
	if f.cfg.Index.Debug {
		body.Stacktrace = trace
	}

	c.JSON(apperr.StatusOf(err), body)
}

// IsMachinePath reports whether path is served to programmatic clients. path
// is relative to the mount point (server.root_path already removed); with no
// root path configured it is the full request path.
func IsMachinePath(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin/")
}

func renderHTTPError(c *gin.Context, e *apperr.HTTPError) {
	if e.IsRedirect() {
		c.Header("Location", e.Location)
	}

	c.HTML(apperr.StatusOf(e), templates.Error, gin.H{
		"title":       e.Title(),
		"explanation": e.Explanation(),
		"detail":      e.Detail,
		"location":    e.Location,
	})
}
