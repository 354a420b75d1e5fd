// Package version exposes the running build version.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X pkgindex-web/internal/version.Version=1.4.2" ./cmd/server
var Version = "0.1.0"

// Get returns the running software version
func Get() string {
	return Version
}
