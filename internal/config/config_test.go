package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/e7canasta/matrixrouter/internal/ndi"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrixrouter.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\nrouting_bandwidth: lowest\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("cfg.Port = %d, want 9090", cfg.Port)
	}
	if cfg.Bandwidth() != ndi.BandwidthLowest {
		t.Fatalf("cfg.Bandwidth() = %v, want lowest", cfg.Bandwidth())
	}
}
