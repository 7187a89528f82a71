package main

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/config"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted context directory",
		Required: true,
	}
	dbKindFlag = cli.StringFlag{
		Name:  "kind",
		Usage: "the storage engine kind (memory|ordered|leveldb|bolt)",
		Value: config.BackendLevelDB,
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path of the node configuration file",
		Value: "node.yml",
	}
)

// openBackend builds the engine named by the kind and dir flags.
func openBackend(ctx *cli.Context) (backend.Backend, error) {
	cfg := config.Default()
	cfg.Backend.Kind = ctx.String(dbKindFlag.Name)
	cfg.Backend.Directory = ctx.String(dbDirectoryFlag.Name)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.NewBackend()
}

// newLogger builds a production logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(parsed)
	return logConfig.Build()
}
