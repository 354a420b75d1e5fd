package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pkgindex-web/internal/config"
	"pkgindex-web/internal/middleware"
	"pkgindex-web/internal/templates"
	"pkgindex-web/internal/version"
)

// IndexHandler serves the landing page
type IndexHandler struct {
	cfg *config.Config
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(cfg *config.Config) *IndexHandler {
	return &IndexHandler{cfg: cfg}
}

// GetIndex renders the home screen, or sends anonymous users to the login
// page when pypi.authenticated_index is enabled.
func (h *IndexHandler) GetIndex(c *gin.Context) {
	if h.cfg.RequireLogin() && middleware.GetUserID(c) == "" {
		c.Redirect(http.StatusFound, appPath(c, h.cfg, "/login"))
		return
	}

	c.HTML(http.StatusOK, templates.Index, h.RenderContext(c))
}

// RenderContext is the template data for the landing page
func (h *IndexHandler) RenderContext(c *gin.Context) gin.H {
	return gin.H{
		"version": version.Get(),
		"app_url": appPath(c, h.cfg, ""),
	}
}

// AddSlash redirects the bare mount point to its slashed form, keeping the query.
func (h *IndexHandler) AddSlash(c *gin.Context) {
	location := appPath(c, h.cfg, "/")
	if raw := c.Request.URL.RawQuery; raw != "" {
		location += "?" + raw
	}
	c.Redirect(http.StatusMovedPermanently, location)
}

// @Summary Version
// @Description Running software version
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/version [get]
func (h *IndexHandler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": version.Get()})
}
