// Package public embeds the admin console's static assets.
package public

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var static embed.FS

// StaticFS returns the assets rooted at the static directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}
