package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/menuqr/menuqr/runner"
	"github.com/menuqr/menuqr/runner/webrunner"
)

func main() {
	_ = godotenv.Load() // Load .env file if present

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := runner.ParseConfig()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan

		log.Println("Received signal, shutting down...")

		cancel()
	}()

	runnerInstance, err := webrunner.New(cfg)
	if err != nil {
		cancel()
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if err := runnerInstance.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		os.Stderr.WriteString(err.Error() + "\n")

		_ = runnerInstance.Close(ctx)

		cancel()

		os.Exit(1)
	}

	_ = runnerInstance.Close(ctx)
}
