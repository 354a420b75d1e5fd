// Package templates embeds the HTML pages served by the index.
package templates

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed html/*.html
var files embed.FS

// Page names as registered with the gin renderer.
const (
	Index = "index.html"
	Login = "login.html"
	Error = "error.html"
)

// Load parses every embedded page into one template set.
func Load() (*template.Template, error) {
	tmpl, err := template.ParseFS(files, "html/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
