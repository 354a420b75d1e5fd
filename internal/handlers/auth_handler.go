package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pkgindex-web/internal/apperr"
	"pkgindex-web/internal/config"
	"pkgindex-web/internal/middleware"
	"pkgindex-web/internal/templates"
	"pkgindex-web/internal/version"
)

// dummyHash is compared against when the user does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pkgindex-web"), bcrypt.DefaultCost)

// AuthHandler handles login and logout against the configured user table
type AuthHandler struct {
	cfg         *config.Config
	authService *middleware.AuthService
	logger      logrus.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(cfg *config.Config, authService *middleware.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		authService: authService,
		logger:      logger,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=255"`
	Password string `form:"password" json:"password" binding:"required,max=1024"`
}

// LoginResponse represents the API login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginPage renders the sign-in form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, templates.Login, h.pageData(c, ""))
}

// Login signs a browser in: the token goes into a cookie and the user is sent
// back to the index. Failures re-render the form.
func (h *AuthHandler) Login(c *gin.Context) {
	userID, token, expiresAt, err := h.authenticate(c)
	if err != nil {
		c.HTML(apperr.StatusOf(err), templates.Login, h.pageData(c, apperr.MessageOf(err)))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(time.Until(expiresAt).Seconds()), h.cookiePath(), "", h.cfg.IsProduction(), true)

	h.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"request_id": c.GetString(middleware.RequestIDKey),
	}).Info("User logged in")

	c.Redirect(http.StatusSeeOther, appPath(c, h.cfg, "/"))
}

// @Summary Login
// @Description Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) APILogin(c *gin.Context) {
	_, token, expiresAt, err := h.authenticate(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, h.cookiePath(), "", h.cfg.IsProduction(), true)
	c.Redirect(http.StatusSeeOther, appPath(c, h.cfg, "/"))
}

// @Summary Current user
// @Description The authenticated user's id
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Router /api/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": middleware.GetUserID(c)})
}

func (h *AuthHandler) authenticate(c *gin.Context) (string, string, time.Time, error) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey)).Debug("Invalid login request")
		return "", "", time.Time{}, apperr.BadRequest(bindingMessage(err))
	}

	hash, ok := h.cfg.Auth.Users[req.Username]
	if !ok {
		hash = string(dummyHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil || !ok {
		h.logger.WithFields(logrus.Fields{
			"username":   req.Username,
			"request_id": c.GetString(middleware.RequestIDKey),
		}).Warn("Login failed")
		return "", "", time.Time{}, apperr.New(http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
	}

	token, expiresAt, err := h.authService.GenerateToken(req.Username)
	if err != nil {
		return "", "", time.Time{}, apperr.Wrap(err, http.StatusInternalServerError, "token_error", "Could not create session")
	}

	return req.Username, token, expiresAt, nil
}

func (h *AuthHandler) pageData(c *gin.Context, errMessage string) gin.H {
	return gin.H{
		"version": version.Get(),
		"app_url": appPath(c, h.cfg, ""),
		"error":   errMessage,
	}
}

func (h *AuthHandler) cookiePath() string {
	if path := h.cfg.URLPrefix + h.cfg.RootPath; path != "" {
		return path
	}
	return "/"
}
