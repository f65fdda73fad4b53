// coordinator is the host-side peer that sensor nodes discover and report
// to. It answers probes, records status reports, and exposes prometheus
// metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/itohio/godoze/internal/telemetry"
	"github.com/itohio/godoze/pkg/config"
	"github.com/itohio/godoze/pkg/coordinator"
	"github.com/itohio/godoze/pkg/transport"
	"github.com/itohio/godoze/pkg/wire"
)

func main() {
	configFlag := flag.String("config", "config.yaml", "Configuration file path")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	addr, err := wire.ParseMac(cfg.Coordinator.Address)
	if err != nil {
		logger.Fatal("bad coordinator address", zap.Error(err))
	}

	t, err := transport.NewUDP(transport.UDPConfig{
		Address: addr,
		Listen:  cfg.Coordinator.Listen,
		Channel: cfg.Coordinator.Channel,
		Seeds:   cfg.Coordinator.Seeds,
	})
	if err != nil {
		logger.Fatal("failed to bind transport", zap.Error(err))
	}
	defer t.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.Coordinator.MetricsListen))
		if err := http.ListenAndServe(cfg.Coordinator.MetricsListen, mux); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := coordinator.New(t, logger)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("coordinator stopped", zap.Error(err))
	}
	logger.Info("shutting down", zap.Int("nodes_seen", len(c.Nodes())))
}
