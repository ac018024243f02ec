package main

import (
	"bufio"
	"chat-session/contract"
	"chat-session/internal"
	"chat-session/runtime"
	"chat-session/transport/remote"
	"chat-session/view"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, reads input lines until stdin is closed
// or a signal arrives, and centralizes error reporting.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Storage: badger for the cache, and for the history of a local hub
	db, cache, err := internal.OpenStorage(log, config.BadgerFilepath)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 4. Transport: a shared hub when an address is given, an in-process one otherwise
	var chatTransport contract.Transport
	if config.HubAddress != "" {
		conn, err := remote.Dial(ctx, log, config.HubAddress, config.HubTimeout)
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()
		log.Info("Connected to hub", "address", config.HubAddress)
		chatTransport = remote.NewTransport(ctx, log, conn, config.HubTimeout)
	} else {
		hub, closeHub, err := internal.OpenHub(log, db, config)
		if err != nil {
			return err
		}
		defer closeHub()
		chatTransport = hub
	}

	// 5. Client
	scanner := bufio.NewScanner(os.Stdin)
	terminal := view.NewTerminal(os.Stdout, config.Colours)
	client := runtime.NewClient(log, chatTransport, cache, view.NewLinePrompter(scanner, os.Stdout), terminal, runtime.ClientConfig{
		DefaultChannel:    config.DefaultChannel,
		DefaultNick:       config.DefaultNick,
		HeartbeatInterval: config.HeartbeatInterval,
		LoopBufferSize:    config.LoopBufferSize,
		RestartInterval:   config.RestartInterval,
		RemoteCommands:    config.Whitelist(),
	})
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("client failed to start: %w", err)
	}
	defer client.Stop()

	// 6. Input loop
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			return nil
		case line, ok := <-lines:
			if !ok {
				log.Info("Input closed")
				return nil
			}
			if err := client.Submit(ctx, line); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}
