// Package config loads the node configuration and builds the
// configured components from it. The storage engine set is closed;
// selection happens here, never by runtime type inspection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/backend/bolt"
	"github.com/Fidelio-foundation/Fidelio/backend/ldb"
	"github.com/Fidelio-foundation/Fidelio/backend/memory"
	"github.com/Fidelio-foundation/Fidelio/backend/ordered"
)

// Backend kind names accepted by the configuration.
const (
	BackendMemory  = "memory"
	BackendOrdered = "ordered"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Config is the top level node configuration.
type Config struct {
	Backend   BackendConfig  `yaml:"Backend"`
	Listener  ListenerConfig `yaml:"Listener"`
	Recorders RecorderConfig `yaml:"Recorders"`
	RPC       RPCConfig      `yaml:"RPC"`
	LogLevel  string         `yaml:"LogLevel"`
	// CacheSize bounds the decoded-entry read cache; zero selects the
	// store default.
	CacheSize int `yaml:"CacheSize"`
}

// BackendConfig selects and locates the storage engine.
type BackendConfig struct {
	Kind      string `yaml:"Kind"`
	Directory string `yaml:"Directory"`
}

// ListenerConfig carries the IPC server parameters.
type ListenerConfig struct {
	Network string `yaml:"Network"`
	Address string `yaml:"Address"`
	// AcceptTimeoutSeconds bounds one blocking accept.
	AcceptTimeoutSeconds int `yaml:"AcceptTimeoutSeconds"`
	// CycleLength is the housekeeping cadence in processed events.
	CycleLength uint64 `yaml:"CycleLength"`
}

// RecorderConfig enables the configured action recorders.
type RecorderConfig struct {
	FilePath   string `yaml:"FilePath"`
	SQLitePath string `yaml:"SQLitePath"`
	Metrics    bool   `yaml:"Metrics"`
}

// RPCConfig carries the read-only RPC server parameters.
type RPCConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Address string `yaml:"Address"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			Kind:      BackendLevelDB,
			Directory: "data",
		},
		Listener: ListenerConfig{
			Network:              "unix",
			Address:              "/tmp/fidelio-events.sock",
			AcceptTimeoutSeconds: 3,
			CycleLength:          4096,
		},
		RPC: RPCConfig{
			Enabled: false,
			Address: ":8732",
		},
		LogLevel: "info",
	}
}

// LoadFile loads the configuration from the provided path, applied
// over the defaults.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	config := Default()
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Backend.Kind {
	case BackendMemory, BackendOrdered:
	case BackendLevelDB, BackendBolt:
		if c.Backend.Directory == "" {
			return fmt.Errorf("backend kind %s requires a directory", c.Backend.Kind)
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
	switch c.Listener.Network {
	case "unix", "tcp":
	default:
		return fmt.Errorf("unknown listener network %q", c.Listener.Network)
	}
	if c.Listener.Address == "" {
		return fmt.Errorf("listener address must be set")
	}
	if c.RPC.Enabled && c.RPC.Address == "" {
		return fmt.Errorf("rpc address must be set when rpc is enabled")
	}
	return nil
}

// AcceptTimeout returns the configured accept timeout as a duration.
func (c ListenerConfig) AcceptTimeout() time.Duration {
	return time.Duration(c.AcceptTimeoutSeconds) * time.Second
}

// NewBackend builds the configured storage engine.
func (c Config) NewBackend() (backend.Backend, error) {
	switch c.Backend.Kind {
	case BackendMemory:
		return memory.NewBackend(), nil
	case BackendOrdered:
		return ordered.NewBackend(), nil
	case BackendLevelDB:
		return ldb.OpenBackend(c.Backend.Directory, nil)
	case BackendBolt:
		return bolt.OpenBackend(filepath.Join(c.Backend.Directory, "context.bolt"))
	default:
		return nil, fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
}
