package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-relay/actions"
	"chat-relay/bus"
	"chat-relay/commands"
	"chat-relay/history"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/mutes"
	"chat-relay/ratelimit"
	"chat-relay/relay"
	"chat-relay/repositories"
	"chat-relay/roles"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so defers (database close in particular)
// always execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	charReplacement, err := characterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Mute registry, loaded once at startup
	muteStore := repositories.NewMuteRepository(db, log)
	muteRegistry := mutes.NewRegistry(log)
	muteRegistry.Load(muteStore)

	// 4. Moderation pipeline pieces
	censored, err := moderation.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(censored.Languages), strings.Join(censored.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(censored.Words)))

	moderator, err := moderation.NewModerator(censored.Words, charReplacement, log)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}
	filter := moderation.NewFilter(moderation.NewCensorFilter(&moderator), log)

	limiter := ratelimit.NewLimiter(config.RateMaxMessages, config.RateWindow)
	buffer := history.NewBuffer(config.HistoryCapacity)

	// 5. Sessions, bus, relay
	sessions := runtime.NewRegistry()

	redisClient := goredis.NewClient(&goredis.Options{Addr: config.RedisAddr})
	defer func() { _ = redisClient.Close() }()
	announceBus := bus.NewRedisBus(redisClient, log)
	announceRelay := relay.NewRelay(announceBus, sessions, config.PublishTimeout, log)

	// 6. Dispatcher & engine
	oracle := roles.FromEnv(log)
	dispatcher := commands.NewDispatcher(
		sessions, oracle, muteRegistry, actions.NewLogged(log), filter, announceRelay, log)
	engine := runtime.NewEngine(
		log, muteRegistry, limiter, filter, buffer, sessions, dispatcher, oracle)

	// 7. Supervised background workers
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(
		workers.NewSnapshotSaver(muteRegistry, muteStore, log),
		workers.NewAnnounceSubscriber(announceBus, announceRelay, log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(supervisorDone)
	}()

	// 8. Inspect server (operators only)
	if config.InspectPort > 0 {
		inspect := internal.NewInspectServer(db, func() map[string]any {
			return map[string]any{
				"connected_clients": sessions.Count(),
				"history_length":    buffer.Len(),
				"muted_players":     len(muteRegistry.List()),
			}
		}, log)
		inspect.Start(config.InspectPort)
	}

	// 9. Websocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHub(engine, sessions, log))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat relay", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 10. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	supervisor.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")

	return nil
}
