package site

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFS embed.FS

// assets is the dashboard client rooted at static/.
func assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
