// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/neilotoole/errgroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/modevm/config"
	"github.com/ava-labs/modevm/consts"
	"github.com/ava-labs/modevm/genesis"
	"github.com/ava-labs/modevm/indexer"
	"github.com/ava-labs/modevm/internal/logging"
	"github.com/ava-labs/modevm/journal"
	"github.com/ava-labs/modevm/rpc"
	"github.com/ava-labs/modevm/server"
	"github.com/ava-labs/modevm/storage"
	"github.com/ava-labs/modevm/trace"
	"github.com/ava-labs/modevm/vm"
)

const (
	baseURL         = "/ext"
	shutdownTimeout = 10 * time.Second
	indexDir        = "index"
	journalDir      = "journal"
)

func loadConfig(path string) (*config.Config, error) {
	if len(path) == 0 {
		return config.New(nil)
	}
	return config.Load(path)
}

func loadGenesis(path string) (*genesis.Genesis, error) {
	if len(path) == 0 {
		return genesis.Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return genesis.Load(b)
}

func runNode(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	genesisPath, err := cmd.Flags().GetString("genesis")
	if err != nil {
		return err
	}
	replayDir, err := cmd.Flags().GetString("replay")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	g, err := loadGenesis(genesisPath)
	if err != nil {
		return fmt.Errorf("failed to load genesis: %w", err)
	}
	log, err := logging.New(consts.Name, cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, err := trace.New(cfg.GetTraceConfig("node"))
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			log.Warn("failed to close tracer", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	db, err := storage.New(cfg.StoreBackend, cfg.DataDir, cfg.Pebble, registry)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}

	var (
		options []vm.Option
		index   rpc.ResultIndex
	)
	if cfg.IndexerEnabled {
		sqlIndex, err := indexer.OpenSQLite(filepath.Join(cfg.DataDir, indexDir))
		if err != nil {
			return fmt.Errorf("failed to open index: %w", err)
		}
		index = sqlIndex
		options = append(options, vm.WithResultSubscription(sqlIndex))
	}
	if cfg.JournalEnabled {
		w, err := journal.NewWriter(filepath.Join(cfg.DataDir, journalDir))
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		options = append(options, vm.WithBlockSubscription(w))
	}

	node, err := vm.New(ctx, log, tracer, registry, cfg, g, db, options...)
	if err != nil {
		return fmt.Errorf("failed to create vm: %w", err)
	}
	defer func() {
		if err := node.Shutdown(context.Background()); err != nil {
			log.Error("failed to shutdown vm", zap.Error(err))
		}
	}()

	if len(replayDir) > 0 {
		replayed, err := node.ReplayJournal(ctx, replayDir)
		if err != nil {
			return fmt.Errorf("failed to replay journal: %w", err)
		}
		log.Info("replayed journal",
			zap.String("dir", replayDir),
			zap.Int("blocks", replayed),
		)
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddress, err)
	}
	srv := server.New(
		baseURL,
		log,
		listener,
		server.NewDefaultHTTPConfig(),
		cfg.AllowedOrigins,
		cfg.AllowedHosts,
		shutdownTimeout,
	)
	handler, err := rpc.NewJSONRPCHandler(rpc.Name, rpc.NewJSONRPCServer(node, index))
	if err != nil {
		return err
	}
	if err := srv.AddRoute(handler, "bc/"+consts.Name, "/rpc"); err != nil {
		return err
	}
	if cfg.MetricsEnabled {
		metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		if err := srv.AddRoute(metricsHandler, "metrics", ""); err != nil {
			return err
		}
	}

	node.Start()
	log.Info("node started",
		zap.String("address", listener.Addr().String()),
		zap.Stringer("genesisID", node.GenesisID()),
		zap.Uint64("height", node.LastAccepted().Height),
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(srv.Dispatch)
	eg.Go(func() error {
		<-egCtx.Done()
		log.Info("shutting down")
		return srv.Shutdown()
	})
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
