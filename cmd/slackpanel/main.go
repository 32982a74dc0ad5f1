package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	slackadapter "github.com/ericfisherdev/slackpanel/internal/adapter/driven/slack"
	sqliteadapter "github.com/ericfisherdev/slackpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/slackpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/slackpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/slackpanel/internal/application"
	"github.com/ericfisherdev/slackpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr(),
		"db_path", cfg.DBPath,
		"redirect_uri", cfg.SlackRedirectURI,
		"token_encryption", len(cfg.SecretKey) > 0,
	)

	// 2. Load the TLS key pair; the server never runs over plain HTTP.
	cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
	if err != nil {
		return fmt.Errorf("load tls key pair: %w", err)
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 5. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "version", version)

	// 6. Wire adapters.
	credentialStore, err := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	if err != nil {
		return err
	}
	scheduleStore := sqliteadapter.NewScheduleRepo(db)
	gateway := slackadapter.NewClient(cfg.SlackAPIURL, slog.Default())

	// 7. Create services.
	authSvc := application.NewAuthService(application.OAuthConfig{
		ClientID:     cfg.SlackClientID,
		ClientSecret: cfg.SlackClientSecret,
		RedirectURI:  cfg.SlackRedirectURI,
		AuthorizeURL: cfg.SlackAuthorizeURL,
	}, credentialStore, gateway, slog.Default())
	msgSvc := application.NewMessageService(credentialStore, scheduleStore, gateway, slog.Default())

	// 8. Register API and web routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(msgSvc, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(authSvc, slog.Default()))

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		TLSConfig:         &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      slackadapter.RequestTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("https server starting", "addr", srv.Addr)
		if err := srv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("slackpanel started", "url", fmt.Sprintf("https://localhost:%d", cfg.Port))

	// 9. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("https server: %w", err)
	}

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("https server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
