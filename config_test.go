package meshvk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 800 || cfg.Height != 640 {
		t.Errorf("size: have %dx%d, want 800x640", cfg.Width, cfg.Height)
	}
	if !cfg.IsResizable() {
		t.Error("default config should be resizable")
	}
	if cfg.Validation {
		t.Error("validation should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	data := []byte(`
title: viewer
width: 1024
resizable: false
validation: true
model: models/cube.obj
max_texture_size: 2048
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "viewer" {
		t.Errorf("title: have %q, want %q", cfg.Title, "viewer")
	}
	if cfg.Width != 1024 || cfg.Height != 640 {
		t.Errorf("size: have %dx%d, want 1024x640", cfg.Width, cfg.Height)
	}
	if cfg.IsResizable() {
		t.Error("resizable: have true, want false")
	}
	if !cfg.Validation {
		t.Error("validation: have false, want true")
	}
	if cfg.Model != "models/cube.obj" {
		t.Errorf("model: have %q", cfg.Model)
	}
	if cfg.Texture != DefaultConfig().Texture {
		t.Errorf("texture: have %q, want default", cfg.Texture)
	}
	if cfg.MaxTextureSize != 2048 {
		t.Errorf("max_texture_size: have %d, want 2048", cfg.MaxTextureSize)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"zero width":    "width: 0",
		"negative size": "height: -5",
		"texture size":  "max_texture_size: -1",
		"shader":        "vertex_shader: ''",
		"syntax":        "width: [",
	}
	for name, data := range tests {
		if _, err := ParseConfig([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshview.yaml")
	if err := os.WriteFile(path, []byte("height: 480\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != 480 {
		t.Errorf("height: have %d, want 480", cfg.Height)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
