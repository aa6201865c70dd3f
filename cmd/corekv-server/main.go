package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/corekv/corekv/internal/config"
	"github.com/corekv/corekv/internal/core"
	"github.com/corekv/corekv/internal/logging"
	"github.com/corekv/corekv/internal/server"
	"github.com/corekv/corekv/internal/stats"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	httpAddr := flag.String("http_addr", "", "admin HTTP address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	actor := core.Start()
	defer actor.Stop()

	st := stats.New()
	srv := server.New(cfg.ListenAddr, actor.Sender(), st, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- srv.ListenAndServe(ctx) }()
	go func() { errCh <- srv.ServeAdmin(ctx, cfg.HTTPAddr) }()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
