package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chat-client/internal"
	"chat-client/observability"
	"chat-client/repositories"
	"chat-client/runtime"
	"chat-client/services"
	"chat-client/store"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles configuration loading, wiring of the embedded backend behind
// the gateway contracts, and the interactive command loop. This pattern
// ensures clean resource management and error propagation.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database (BadgerDB) backing the embedded gateways.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 4. Embedded backend behind the gateway contracts.
	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	registry := runtime.NewRegistry()

	sessionGateway := services.NewSessionService(users, sessions, log, config.AuthTokenDuration)
	messageGateway := services.NewMessageService(messageRepository, registry, log)

	// 5. The chat state store is the single source of truth for the UI.
	stats := observability.NewClientStats(log)
	chat := store.New(log, sessionGateway, messageGateway, stats)
	defer chat.Close()

	go stats.Listen(ctx, config.StatsInterval)

	chat.Initialize(ctx)

	// 6. Render every observed state until shutdown.
	go func() {
		for state := range chat.Watch(ctx) {
			render(os.Stdout, state)
		}
	}()

	// 7. Command loop on stdin.
	fmt.Println("Commands: /login <email> <password> | /quit | anything else is sent as a message")
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			switch {
			case line == "/quit":
				return exitOK, nil
			case strings.HasPrefix(line, "/login"):
				fields := strings.Fields(line)
				if len(fields) != 3 {
					fmt.Println("usage: /login <email> <password>")
					continue
				}
				chat.LogIn(ctx, fields[1], fields[2])
			case strings.TrimSpace(line) == "":
				continue
			default:
				chat.SendMessage(ctx, line)
			}
		}
	}
}
