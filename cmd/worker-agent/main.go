package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"tidywork/internal/booking/bootstrap"
	"tidywork/internal/shared/config"
	"tidywork/internal/shared/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("failed to load config:", err)
	}

	lg := logger.NewLogger("worker-agent", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.Run(ctx, cfg, lg)
}
