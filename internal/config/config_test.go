package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bathyscan.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Refraction.Index != 1.333 {
		t.Errorf("default index = %g, want 1.333", cfg.Refraction.Index)
	}
	if cfg.Toolchain.TileCommand != "lastile" || cfg.Toolchain.MergeCommand != "lasmerge" {
		t.Errorf("default toolchain = %q/%q", cfg.Toolchain.TileCommand, cfg.Toolchain.MergeCommand)
	}
	if cfg.Tiling.OutputTemplate != "line_XX.laz" {
		t.Errorf("default template = %q", cfg.Tiling.OutputTemplate)
	}
	if cfg.ToolchainTimeout() != 0 {
		t.Errorf("default timeout = %v, want 0", cfg.ToolchainTimeout())
	}
}

func TestLoadFromFile_PartialOverride(t *testing.T) {
	path := writeConfig(t, `
refraction:
  index: 1.34
toolchain:
  timeout: 10m
tiling:
  workers: 4
  strip_buffer: true
database:
  path: /var/lib/bathyscan/survey.db
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Refraction.Index != 1.34 {
		t.Errorf("index = %g", cfg.Refraction.Index)
	}
	if cfg.ToolchainTimeout() != 10*time.Minute {
		t.Errorf("timeout = %v", cfg.ToolchainTimeout())
	}
	if cfg.Tiling.Workers != 4 || !cfg.Tiling.StripBuffer {
		t.Errorf("tiling = %+v", cfg.Tiling)
	}
	// Omitted fields keep their defaults.
	if cfg.Toolchain.TileCommand != "lastile" {
		t.Errorf("tile command = %q", cfg.Toolchain.TileCommand)
	}
	if cfg.Cluster.MinPoints != 5 {
		t.Errorf("min points = %d", cfg.Cluster.MinPoints)
	}
	if cfg.Database.Path != "/var/lib/bathyscan/survey.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
}

func TestLoadFromFile_InvalidIndex(t *testing.T) {
	path := writeConfig(t, "refraction:\n  index: 0.9\n")
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for refractive index below 1")
	}
}

func TestLoadFromFile_BadTimeout(t *testing.T) {
	path := writeConfig(t, "toolchain:\n  timeout: soon\n")
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewToolchain(t *testing.T) {
	path := writeConfig(t, `
toolchain:
  tile_command: /opt/lastools/bin/lastile
  merge_command: /opt/lastools/bin/lasmerge
  timeout: 30s
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	tc := cfg.NewToolchain()
	if tc.TileCommand != "/opt/lastools/bin/lastile" {
		t.Errorf("tile command = %q", tc.TileCommand)
	}
	if tc.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", tc.Timeout)
	}
}
