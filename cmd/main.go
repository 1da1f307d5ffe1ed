/*
Package main is the entry point for the RW Chat application.

It is responsible for loading configuration, initializing the global logging system,
choosing the identity directory, starting the chat coordinator, setting up the HTTP server,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rwchat/internal/app/admission"
	"rwchat/internal/app/chat"
	"rwchat/internal/app/db"
	"rwchat/internal/app/user"
	"rwchat/internal/configs"
	"rwchat/internal/handler"
	"rwchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment(), cfg.LogLevel)
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("database", cfg.DatabaseDSN != "").
		Int("outbound_queue_size", cfg.OutboundQueueSize).
		Int("max_message_bytes", cfg.MaxMessageBytes).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	directory, closeDirectory := openDirectory(ctx, cfg)
	defer closeDirectory()

	if cfg.SeedUsers {
		if err := user.Seed(ctx, directory); err != nil {
			logx.Fatal(err, "Failed to seed demo accounts")
		}
		logx.Info("Demo accounts ready", "writer", "writer@example.com", "reader", "reader@example.com")
	}

	// The writer lock is shared by the admission gate (read-only) and the coordinator.
	lock := chat.NewWriterLock()
	coordinator := chat.NewCoordinator(lock, chat.Options{
		QueueSize:       cfg.OutboundQueueSize,
		MaxMessageBytes: cfg.MaxMessageBytes,
	})

	deps := &handler.AppDeps{
		Coordinator: coordinator,
		Gate:        admission.NewGate(directory, lock, cfg.JWTSecret),
		Profiles:    chat.NewProfileExchange(directory, cfg.JWTSecret),
		Directory:   directory,
		Config:      cfg,
	}

	// Setup HTTP server and routes
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("RW Chat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Hijacked WebSocket connections are not tracked by server.Shutdown; closing the
	// coordinator's queues makes every write pump close its socket.
	coordinator.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}

// openDirectory returns the PostgreSQL directory when DATABASE_URL is set and the
// in-memory directory otherwise.
func openDirectory(ctx context.Context, cfg *configs.AppConfig) (user.Directory, func()) {
	if cfg.DatabaseDSN == "" {
		logx.Info("DATABASE_URL not set, using in-memory identity directory")
		return user.NewMemoryDirectory(), func() {}
	}

	pool, err := db.Open(ctx, cfg.DatabaseDSN, db.DefaultPoolOptions)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}

	logx.Info("Connected to PostgreSQL identity directory")
	return db.NewUserStore(pool), pool.Close
}
