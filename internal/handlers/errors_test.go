package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgindex-web/internal/apperr"
	"pkgindex-web/internal/config"
	"pkgindex-web/internal/middleware"
)

// teapotError carries a status but no key or message.
type teapotError struct{}

func (teapotError) Error() string   { return "short and stout" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

// failWith registers path on every prefix the formatter distinguishes.
func failWith(s *testServer, path string, err error) {
	handler := func(c *gin.Context) { middleware.Fail(c, err) }
	s.router.GET("/api"+path, handler)
	s.router.GET("/admin"+path, handler)
	s.router.GET("/web"+path, handler)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestErrorFormatterJSON(t *testing.T) {
	t.Run("ConflictExample", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/package/foo", apperr.Conflict("already exists"))

		w := s.get("/api/package/foo")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":"conflict","message":"already exists"}`, w.Body.String())
	})

	t.Run("AdminPathIsJSON", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/users", apperr.Forbidden("admins only"))

		w := s.get("/admin/users")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"forbidden","message":"admins only"}`, w.Body.String())
	})

	t.Run("PlainErrorDefaults", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/boom", errors.New("disk on fire"))

		w := s.get("/api/boom")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"unknown","message":"disk on fire"}`, w.Body.String())
	})

	t.Run("PlainErrorUnderAdmin", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/boom", errors.New("disk on fire"))

		w := s.get("/admin/boom")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"error":"unknown","message":"disk on fire"}`, w.Body.String())
	})

	t.Run("RequestLimitsKeepStatusAndKey", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) {
			c.Limits.RequestsPerSecond = 0.5
			c.Limits.Burst = 1
			c.MaxBodyBytes = 4
		})

		large := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice"}`))
		large.Header.Set("Content-Type", "application/json")
		tooLarge := s.do(large)
		limited := s.get("/api/version")

		assert.Equal(t, http.StatusRequestEntityTooLarge, tooLarge.Code)
		assert.Equal(t, "request_too_large", decodeError(t, tooLarge).Error)
		assert.Equal(t, http.StatusTooManyRequests, limited.Code)
		body := decodeError(t, limited)
		assert.Equal(t, "rate_limited", body.Error)
		assert.Equal(t, "Too many requests. Limit: 0.5 requests per second", body.Message)
	})

	t.Run("StatusWithoutKey", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/teapot", teapotError{})

		w := s.get("/api/teapot")

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.JSONEq(t, `{"error":"unknown","message":"short and stout"}`, w.Body.String())
	})

	t.Run("WrappedCapabilitiesAreFound", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/wrapped", fmt.Errorf("publishing: %w", apperr.NotFoundError("package")))

		w := s.get("/api/wrapped")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not_found","message":"package not found"}`, w.Body.String())
	})

	t.Run("StacktraceOnlyInDebug", func(t *testing.T) {
		quiet := newTestServer(t, nil)
		failWith(quiet, "/conflict", apperr.Conflict("already exists"))
		debug := newTestServer(t, func(c *config.Config) { c.Index.Debug = true })
		failWith(debug, "/conflict", apperr.Conflict("already exists"))

		assert.NotContains(t, quiet.get("/api/conflict").Body.String(), "stacktrace")

		body := decodeError(t, debug.get("/api/conflict"))
		assert.Equal(t, "conflict", body.Error)
		assert.Contains(t, body.Stacktrace, "handlers")
	})

	t.Run("NoRouteUnderAPI", func(t *testing.T) {
		s := newTestServer(t, nil)

		w := s.get("/api/nothing-here")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"unknown","message":"The resource could not be found."}`, w.Body.String())
	})

	t.Run("PathIsRelativeToMountPoint", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) { c.RootPath = "/pypi" })

		w := s.get("/pypi/api/nothing-here")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "unknown", decodeError(t, w).Error)
	})

	t.Run("PanicIsNormalized", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) { c.Index.Debug = true })
		s.router.GET("/api/panic", func(c *gin.Context) { panic("boom") })

		w := s.get("/api/panic")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "unknown", body.Error)
		assert.Equal(t, "panic: boom", body.Message)
		assert.NotEmpty(t, body.Stacktrace)
	})
}

func TestErrorFormatterHTML(t *testing.T) {
	t.Run("HTTPErrorRenderedUnmodified", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/gone", apperr.NewHTTPError(http.StatusGone, "yanked"))

		w := s.get("/web/gone")

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "410 Gone")
		assert.Contains(t, w.Body.String(), "yanked")
	})

	t.Run("RedirectKeepsLocation", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/moved", apperr.Found("https://files.example.com/pkg"))

		w := s.get("/web/moved")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://files.example.com/pkg", w.Header().Get("Location"))
	})

	t.Run("OtherErrorsBecomeServerError", func(t *testing.T) {
		s := newTestServer(t, nil)
		failWith(s, "/conflict", apperr.Conflict("already exists"))
		failWith(s, "/boom", errors.New("disk on fire"))

		conflict := s.get("/web/conflict")
		boom := s.get("/web/boom")

		assert.Equal(t, http.StatusInternalServerError, conflict.Code)
		assert.Contains(t, conflict.Body.String(), "already exists")
		assert.Equal(t, http.StatusInternalServerError, boom.Code)
		assert.Contains(t, boom.Body.String(), "500 Internal Server Error")
		assert.Contains(t, boom.Body.String(), "disk on fire")
	})

	t.Run("APILookalikeIsBrowserPath", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.router.GET("/apis", func(c *gin.Context) { middleware.Fail(c, apperr.Conflict("x")) })

		w := s.get("/apis")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	})

	t.Run("RateLimitPage", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) {
			c.Limits.RequestsPerSecond = 0.001
			c.Limits.Burst = 1
		})

		s.get("/login")
		w := s.get("/login")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "429 Too Many Requests")
		assert.Contains(t, w.Body.String(), "0.001 requests per second")
	})

	t.Run("OversizedBodyPage", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) { c.MaxBodyBytes = 4 })

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=alice&password=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := s.do(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "413 Request Entity Too Large")
	})

	t.Run("SiblingOfMountPointIsBrowserPath", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) { c.RootPath = "/pypi" })

		w := s.get("/pypi-mirror/api/x")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	})

	t.Run("NoRoute", func(t *testing.T) {
		s := newTestServer(t, nil)

		w := s.get("/simple/missing/")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "404 Not Found")
	})

	t.Run("NoMethod", func(t *testing.T) {
		s := newTestServer(t, nil)

		w := s.do(httptest.NewRequest(http.MethodDelete, "/login", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Contains(t, w.Body.String(), "The method DELETE is not allowed")
	})
}

func TestErrorFormatterLogs(t *testing.T) {
	s := newTestServer(t, nil)
	failWith(s, "/conflict", apperr.Conflict("already exists"))

	s.get("/web/conflict")

	var entry *logrus.Entry
	for _, e := range s.hook.AllEntries() {
		if _, ok := e.Data["stacktrace"]; ok && e.Level == logrus.ErrorLevel {
			entry = e
		}
	}
	require.NotNil(t, entry, "expected the formatter to log the error")
	assert.Equal(t, "already exists", entry.Message)
	assert.Equal(t, "/web/conflict", entry.Data["path"])
	assert.Equal(t, http.StatusConflict, entry.Data["status"])
	assert.NotEmpty(t, entry.Data["stacktrace"])
}

func TestIsMachinePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/", true},
		{"/api/package/foo", true},
		{"/admin/users", true},
		{"/api", false},
		{"/admin", false},
		{"/apis/x", false},
		{"/", false},
		{"/simple/api/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMachinePath(tt.path))
		})
	}
}
