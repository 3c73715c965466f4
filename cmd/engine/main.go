package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"goa.design/clue/log"

	"github.com/KirkDiggler/cultivation-idle/internal/bootstrap"
	"github.com/KirkDiggler/cultivation-idle/internal/config"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		ctx := log.Context(context.Background())
		log.Fatal(ctx, err, log.KV{K: "msg", V: "failed to load config"})
	}

	ctx := bootstrap.LogContext(context.Background(), cfg.Log)
	if envErr != nil {
		log.Info(ctx, log.KV{K: "msg", V: "no .env file found"})
	}

	rt, err := bootstrap.New(ctx, cfg, false)
	if err != nil {
		log.Fatal(ctx, err, log.KV{K: "msg", V: "failed to start engine"})
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "failed to release resources"})
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	log.Info(ctx,
		log.KV{K: "msg", V: "engine running"},
		log.KV{K: "interval", V: cfg.Scheduler.Interval.String()},
		log.KV{K: "concurrency", V: cfg.Scheduler.Concurrency})

	if err := rt.Provider.Scheduler.Run(ctx); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "scheduler exited"})
	}

	log.Info(ctx, log.KV{K: "msg", V: "shutting down"})
}
