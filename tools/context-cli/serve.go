package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Fidelio-foundation/Fidelio/config"
	"github.com/Fidelio-foundation/Fidelio/listener"
	"github.com/Fidelio-foundation/Fidelio/replay/recorder"
	"github.com/Fidelio-foundation/Fidelio/rpcserv"
	"github.com/Fidelio-foundation/Fidelio/state"
)

var serveCommand = cli.Command{
	Action: serve,
	Name:   "serve",
	Usage:  "runs the context listener node until interrupted",
	Flags: []cli.Flag{
		&configFlag,
	},
}

func serve(cliCtx *cli.Context) error {
	cfg, err := config.LoadFile(cliCtx.String(configFlag.Name))
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := cfg.NewBackend()
	if err != nil {
		return err
	}
	engine, err := state.NewContext(db, cfg.CacheSize)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer engine.Close()

	recorders, err := buildRecorders(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, rec := range recorders {
			if err := rec.Close(); err != nil {
				log.Warn("failed to close recorder", zap.Error(err))
			}
		}
	}()

	l := listener.New(log, listener.Config{
		Network:       cfg.Listener.Network,
		Address:       cfg.Listener.Address,
		AcceptTimeout: cfg.Listener.AcceptTimeout(),
		CycleLength:   cfg.Listener.CycleLength,
	}, engine, recorders...)
	if err := l.Start(); err != nil {
		return err
	}

	var rpcServer *http.Server
	if cfg.RPC.Enabled {
		server, err := rpcserv.New(log, db, cfg.CacheSize, cfg.Recorders.Metrics)
		if err != nil {
			return err
		}
		rpcServer = &http.Server{Addr: cfg.RPC.Address, Handler: server.Router()}
		go func() {
			log.Info("rpc server listening", zap.String("address", cfg.RPC.Address))
			if err := rpcServer.ListenAndServe(); err != http.ErrServerClosed {
				log.Error("rpc server failed", zap.Error(err))
			}
		}()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-interrupt
	log.Info("shutting down", zap.Stringer("signal", sig))

	l.RequestShutdown()
	l.Join()
	if rpcServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rpcServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to stop rpc server", zap.Error(err))
		}
	}
	return nil
}

func buildRecorders(cfg config.Config) ([]recorder.Recorder, error) {
	var recorders []recorder.Recorder
	if cfg.Recorders.FilePath != "" {
		fileRecorder, err := recorder.NewFile(cfg.Recorders.FilePath)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, fileRecorder)
	}
	if cfg.Recorders.SQLitePath != "" {
		sqliteRecorder, err := recorder.NewSQLite(cfg.Recorders.SQLitePath)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, sqliteRecorder)
	}
	if cfg.Recorders.Metrics {
		metricsRecorder, err := recorder.NewMetrics(nil)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, metricsRecorder)
	}
	return recorders, nil
}
