package handlers

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"

	"pkgindex-web/internal/config"
)

// AppURL returns the public base URL of the index, without a trailing slash
// unless pypi.app_url was configured with one. X-Forwarded-Proto and
// X-Forwarded-Host are only honored from server.trusted_proxies.
func AppURL(c *gin.Context, cfg *config.Config) string {
	if cfg.Index.AppURL != "" {
		return cfg.Index.AppURL
	}

	scheme := "http"
	if c.Request.TLS != nil || c.Request.URL.Scheme == "https" {
		scheme = "https"
	}
	host := c.Request.Host

	if fromTrustedProxy(c, cfg) {
		if proto := firstHeaderValue(c.GetHeader("X-Forwarded-Proto")); proto != "" {
			scheme = proto
		}
		if fwd := firstHeaderValue(c.GetHeader("X-Forwarded-Host")); fwd != "" {
			host = fwd
		}
	}

	return scheme + "://" + host + cfg.URLPrefix + cfg.RootPath
}

// appPath joins path onto the app URL without doubling slashes.
func appPath(c *gin.Context, cfg *config.Config, path string) string {
	return strings.TrimRight(AppURL(c, cfg), "/") + path
}

// fromTrustedProxy reports whether the direct peer is one of the configured
// proxies.
func fromTrustedProxy(c *gin.Context, cfg *config.Config) bool {
	if len(cfg.TrustedProxies) == 0 {
		return false
	}

	peer, err := netip.ParseAddr(c.RemoteIP())
	if err != nil {
		return false
	}
	peer = peer.Unmap()

	for _, entry := range cfg.TrustedProxies {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			if prefix.Contains(peer) {
				return true
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil && addr.Unmap() == peer {
			return true
		}
	}
	return false
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// relativePath strips server.root_path from the request path. Paths outside
// the mount point are returned unchanged.
func relativePath(c *gin.Context, cfg *config.Config) string {
	path := c.Request.URL.Path
	if cfg.RootPath == "" {
		return path
	}
	rel, ok := strings.CutPrefix(path, cfg.RootPath)
	if !ok || (rel != "" && !strings.HasPrefix(rel, "/")) {
		return path
	}
	return rel
}
