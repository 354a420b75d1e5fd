package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"pkgindex-web/internal/apperr"
)

// UserIDKey is the key used to store the authenticated user in context
const UserIDKey = "user_id"

// TokenCookie carries the session token for browser clients
const TokenCookie = "auth_token"

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService issues and validates session tokens
type AuthService struct {
	config *AuthConfig
	now    func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) *AuthService {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "pkgindex-web"
	}
	return &AuthService{config: config, now: time.Now}
}

// TokenDuration is the lifetime of issued tokens
func (a *AuthService) TokenDuration() time.Duration {
	return a.config.TokenDuration
}

// GenerateToken generates a JWT token for a user
func (a *AuthService) GenerateToken(userID string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.config.TokenDuration)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithIssuer(a.config.Issuer), jwt.WithTimeFunc(a.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// tokenFromRequest reads a bearer token, falling back to the session cookie
func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		scheme, token, ok := strings.Cut(authHeader, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}

	return ""
}

// OptionalAuthentication resolves the requesting user when a valid token is
// present. Missing or invalid tokens leave the request anonymous.
func OptionalAuthentication(authService *AuthService, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"error":      err.Error(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
			}).Debug("Optional token validation failed")
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// Authentication rejects anonymous requests
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			Fail(c, apperr.Unauthorized("Authentication required"))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user, or "" for anonymous requests
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
