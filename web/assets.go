// Package web embeds the browser version of the marquee widget.
//
// During development, if web/dist exists on the filesystem it is served
// instead of the embedded copy so the page can be edited without a rebuild.
package web

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed dist/*
var assets embed.FS

// GetAssets returns the widget files. When devPath names an existing
// directory it is served live; otherwise the embedded files are used.
// An empty devPath defaults to "./web/dist".
func GetAssets(devPath string) fs.FS {
	if devPath == "" {
		devPath = "./web/dist"
	}

	if stat, err := os.Stat(devPath); err == nil && stat.IsDir() {
		return os.DirFS(devPath)
	}

	subFS, err := fs.Sub(assets, "dist")
	if err != nil {
		panic("failed to access embedded web assets: " + err.Error())
	}
	return subFS
}

// GetAssetsWithBase checks for development assets relative to baseDir.
func GetAssetsWithBase(baseDir string) fs.FS {
	return GetAssets(filepath.Join(baseDir, "web", "dist"))
}
