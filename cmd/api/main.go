package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/autocomplete"
	"github.com/justsurfingit/careerhub/internal/config"
	"github.com/justsurfingit/careerhub/internal/database"
	"github.com/justsurfingit/careerhub/internal/handlers"
	"github.com/justsurfingit/careerhub/internal/logger"
	"github.com/justsurfingit/careerhub/internal/proxy"
	"github.com/justsurfingit/careerhub/internal/services"
	"github.com/justsurfingit/careerhub/internal/upstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:          "careerhub",
	Short:        "Career services API: job tracking, CVs, matching and autocomplete",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the Postgres tables and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger every command needs.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate needs the %s driver, have %s", config.DriverPostgres, cfg.Database.Driver)
	}
	db, err := database.Connect(cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}
	log.Info("migrations complete")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 1. Configuration and logging
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	st, err := database.Open(cfg, log)
	if err != nil {
		return err
	}

	// 3. External career API
	client, err := upstream.New(upstream.Options{
		BaseURL:   cfg.Upstream.BaseURL,
		APIKey:    cfg.Upstream.APIKey,
		Timeout:   cfg.Upstream.Timeout,
		RateLimit: cfg.Upstream.RateLimit,
		Burst:     cfg.Upstream.Burst,
	})
	if err != nil {
		return err
	}
	if client.BaseURL() == nil {
		log.Warn("upstream base url not set; autocomplete and remote search return nothing")
	}

	suggest, err := autocomplete.New(client, autocomplete.Options{
		Wait:      cfg.Autocomplete.Wait,
		MinLength: cfg.Autocomplete.MinLength,
		CacheSize: cfg.Autocomplete.CacheSize,
		Clients:   cfg.Autocomplete.Clients,
	}, log)
	if err != nil {
		return err
	}

	// 4. Initialize Core Services
	llmService, err := services.NewLLMService(ctx, cfg.LLM.APIKey, cfg.LLM.Model, log)
	if err != nil {
		return err
	}
	authService := services.NewAuthService(st, cfg.Auth.SessionTTL, log)
	jobService := services.NewJobService(st, client, log)
	cvService := services.NewCVService(st)
	matchingService := services.NewMatchingService(st, cvService)
	onboardingService := services.NewOnboardingService(st, cvService, log)
	bootstrapService := &services.BootstrapService{
		Onboarding:        onboardingService,
		CVs:               cvService,
		AutocompleteKinds: autocomplete.Kinds,
		AutocompleteWait:  suggest.Wait(),
	}

	var google handlers.GoogleSignIn
	if cfg.GoogleEnabled() {
		google = auth.NewGoogleProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.GoogleRedirectURL)
	}

	// 5. Initialize Handlers & Router
	router := &handlers.Router{
		Jobs:         handlers.NewJobHandler(llmService, jobService, log),
		CVs:          handlers.NewCVHandler(cvService, matchingService, llmService, log),
		Auth:         handlers.NewAuthHandler(authService, google, log),
		Onboarding:   handlers.NewOnboardingHandler(onboardingService, bootstrapService, log),
		Autocomplete: handlers.NewAutocompleteHandler(suggest, log),
		Sessions:     authService,
		External: proxy.New(proxy.Options{
			Target:       client.BaseURL(),
			APIKey:       client.APIKey(),
			APIKeyHeader: upstream.APIKeyHeader,
		}, log),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	}
	engine, err := router.Engine()
	if err != nil {
		return err
	}

	// 6. Run until interrupted
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
