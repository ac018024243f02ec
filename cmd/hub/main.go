package main

import (
	"chat-session/internal"
	"chat-session/transport/remote"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run serves one hub to every chat pane started with HUB_ADDRESS.
func run() (int, error) {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, _, err := internal.OpenStorage(log, config.BadgerFilepath)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	hub, closeHub, err := internal.OpenHub(log, db, config)
	if err != nil {
		return exitRuntime, err
	}
	defer closeHub()

	listener, err := net.Listen("tcp", config.HubListenAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.HubListenAddress, err)
	}
	s := remote.NewServer(log, hub, config.HubStreamBuffer).GRPCServer()

	// Use an error channel to capture Serve() issues asynchronously.
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting gRPC server", "address", config.HubListenAddress, "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			log.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		s.Stop()
		return exitOK, nil
	case err := <-errChan:
		return exitRuntime, err
	}
}
