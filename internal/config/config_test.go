package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Scheduler.Throughput != 1024 {
		t.Fatalf("throughput = %d, want 1024", cfg.Scheduler.Throughput)
	}
	if cfg.Workers.PoolSize != 5000 {
		t.Fatalf("poolSize = %d, want 5000", cfg.Workers.PoolSize)
	}
	if cfg.Glog.Level == "" {
		t.Fatal("default glog level should not be empty")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
glog:
  level: debug
scheduler:
  throughput: 256
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Glog.Level != "debug" {
		t.Fatalf("level = %q, want debug", cfg.Glog.Level)
	}
	if cfg.Scheduler.Throughput != 256 {
		t.Fatalf("throughput = %d, want 256", cfg.Scheduler.Throughput)
	}
	// 缺省字段保留默认值
	if cfg.Workers.PoolSize != 5000 {
		t.Fatalf("poolSize = %d, want 5000", cfg.Workers.PoolSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("loading a missing file must fail")
	}
}
