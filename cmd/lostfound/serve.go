package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/api"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/client"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/config"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/db"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/events"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/logging"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/notify"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/store"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/upload"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/web"
)

const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)

	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", cfg.Database.Path)

	// Load JWT secret from database (auto-generated on first run) unless set.
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(ctx, database)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}
	}

	uploads, err := upload.New(cfg.Uploads.Dir, cfg.Uploads.MaxDimension)
	if err != nil {
		return err
	}

	bus := events.NewBus(slog.Default())
	notifier, err := notify.New(cfg.SMTP, slog.Default())
	if err != nil {
		return err
	}
	if !cfg.SMTP.Enabled() {
		slog.Warn("email credentials not configured, found notifications will only be logged")
	}
	sub := &notify.Subscriber{Notifier: notifier, Log: slog.Default()}
	if err := sub.Register(ctx, bus, cfg.Notify.Attempts); err != nil {
		return fmt.Errorf("registering notification subscriber: %w", err)
	}

	// Set up routers.
	apiRouter := api.NewRouter(database, api.Options{
		JWTSecret:   jwtSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
		Uploads:     uploads,
		Events:      bus,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	webRouter, err := web.NewRouter(client.New(cfg.Server.APIURL))
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle(upload.URLPrefix, apiRouter)
	mux.Handle("/healthz", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.Recovery(api.LoggingMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		bus.Close()
		return fmt.Errorf("listening on %s: %w", server.Addr, err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("server started", "addr", ln.Addr().String(), "api_url", cfg.Server.APIURL)
	serveErr := serveUntilDone(sigCtx, server, ln, shutdownTimeout)

	// In-flight requests have finished; no more events can be published.
	slog.Info("server stopped, draining notifications")
	if err := bus.Close(); err != nil {
		slog.Error("closing event bus", "error", err)
	}
	slog.Info("closing database")
	return serveErr
}

// serveUntilDone serves on ln until ctx is done, then shuts the server down.
// It returns only after Shutdown has returned, so in-flight handlers are
// finished (or the timeout expired) when it does.
func serveUntilDone(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ln) }()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		server.Close()
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openDatabase opens the database and ensures the schema exists.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Idempotent.
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring database schema: %w", err)
	}
	return database, nil
}
