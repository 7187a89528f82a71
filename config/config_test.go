package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file; %s", err)
	}
	return path
}

func TestLoadFile_AppliesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
Backend:
  Kind: bolt
  Directory: /var/lib/fidelio
Listener:
  Network: tcp
  Address: 127.0.0.1:9732
  AcceptTimeoutSeconds: 5
  CycleLength: 2048
Recorders:
  FilePath: /var/log/fidelio/actions.log
  Metrics: true
RPC:
  Enabled: true
  Address: :8732
LogLevel: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load config; %s", err)
	}
	if cfg.Backend.Kind != BackendBolt || cfg.Backend.Directory != "/var/lib/fidelio" {
		t.Errorf("unexpected backend config %+v", cfg.Backend)
	}
	if cfg.Listener.Network != "tcp" || cfg.Listener.Address != "127.0.0.1:9732" {
		t.Errorf("unexpected listener config %+v", cfg.Listener)
	}
	if want, got := 5*time.Second, cfg.Listener.AcceptTimeout(); want != got {
		t.Errorf("unexpected accept timeout, wanted %s, got %s", want, got)
	}
	if cfg.Listener.CycleLength != 2048 {
		t.Errorf("unexpected cycle length %d", cfg.Listener.CycleLength)
	}
	if cfg.Recorders.FilePath == "" || !cfg.Recorders.Metrics {
		t.Errorf("unexpected recorder config %+v", cfg.Recorders)
	}
	if !cfg.RPC.Enabled {
		t.Errorf("rpc must be enabled")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoadFile_DefaultsSurviveSparseFile(t *testing.T) {
	path := writeConfig(t, `
Backend:
  Kind: memory
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load config; %s", err)
	}
	if cfg.Backend.Kind != BackendMemory {
		t.Errorf("unexpected backend kind %q", cfg.Backend.Kind)
	}
	defaults := Default()
	if cfg.Listener != defaults.Listener {
		t.Errorf("listener defaults lost, got %+v", cfg.Listener)
	}
	if cfg.Listener.CycleLength != 4096 {
		t.Errorf("unexpected default cycle length %d", cfg.Listener.CycleLength)
	}
}

func TestLoadFile_MissingFileFails(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Errorf("missing config file must fail")
	}
}

func TestValidate(t *testing.T) {
	invalid := []func(*Config){
		func(c *Config) { c.Backend.Kind = "etched-in-stone" },
		func(c *Config) { c.Backend.Kind = BackendLevelDB; c.Backend.Directory = "" },
		func(c *Config) { c.Listener.Network = "carrier-pigeon" },
		func(c *Config) { c.Listener.Address = "" },
		func(c *Config) { c.RPC.Enabled = true; c.RPC.Address = "" },
	}
	for i, mutate := range invalid {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("mutation %d must not validate", i)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults must validate; %s", err)
	}
}

func TestNewBackend_BuildsEveryKind(t *testing.T) {
	kinds := []string{BackendMemory, BackendOrdered, BackendLevelDB, BackendBolt}
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			cfg := Default()
			cfg.Backend.Kind = kind
			cfg.Backend.Directory = t.TempDir()
			db, err := cfg.NewBackend()
			if err != nil {
				t.Fatalf("failed to build %s backend; %s", kind, err)
			}
			defer db.Close()
			if err := db.Put([]byte("k"), []byte("v")); err != nil {
				t.Errorf("failed to put; %s", err)
			}
			if value, err := db.Get([]byte("k")); err != nil || string(value) != "v" {
				t.Errorf("failed to get, value=%q err=%v", value, err)
			}
		})
	}
}
