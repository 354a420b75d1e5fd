package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"pkgindex-web/internal/apperr"
)

// RateLimiter implements a process-wide token bucket. A non-positive rate
// disables it.
func RateLimiter(logger logrus.FieldLogger, requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	if requestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burstSize <= 0 {
		burstSize = 1
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Warn("Rate limit exceeded")

			Fail(c, apperr.NewHTTPError(
				http.StatusTooManyRequests,
				fmt.Sprintf("Too many requests. Limit: %g requests per second", requestsPerSecond),
			).WithKey("rate_limited"))
			return
		}
		c.Next()
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			Fail(c, apperr.NewHTTPError(
				http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize),
			).WithKey("request_too_large"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
