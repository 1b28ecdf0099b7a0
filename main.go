package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/finopsbridge/engine/internal/cloudclient"
	"github.com/finopsbridge/engine/internal/config"
	"github.com/finopsbridge/engine/internal/httpapi"
	"github.com/finopsbridge/engine/internal/jobrunner"
	"github.com/finopsbridge/engine/internal/logging"
	"github.com/finopsbridge/engine/internal/scheduler"
	"github.com/finopsbridge/engine/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	st := store.New(db)

	var factory cloudclient.Factory
	if cfg.MockMode {
		factory = cloudclient.NewMockFactory(cfg.MockSeed)
	} else {
		factory = cloudclient.NewLiveFactory()
	}

	runner := jobrunner.New(st, factory, cfg.AWSRegion)
	sched := scheduler.New(cfg.SchedulerCron, st, runner)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	app := httpapi.New(st)

	go func() {
		port := cfg.Port
		if port == "" {
			port = "4000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	sched.Stop()
	_ = app.Shutdown()
}
