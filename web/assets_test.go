package web

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestGetAssets_Embedded(t *testing.T) {
	assets := GetAssetsWithBase("/nonexistent/path")

	for _, name := range []string{"index.html", "style.css", "script.js"} {
		data, err := fs.ReadFile(assets, name)
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestGetAssets_DevDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("dev"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := fs.ReadFile(GetAssets(dir), "index.html")
	if err != nil {
		t.Fatalf("failed to read index.html: %v", err)
	}
	if string(data) != "dev" {
		t.Errorf("expected dev assets, got %q", data)
	}
}
