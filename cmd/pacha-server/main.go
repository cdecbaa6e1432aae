package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/pacha/internal/bootstrap"
	"github.com/at-ishikawa/pacha/internal/config"
	"github.com/at-ishikawa/pacha/internal/database"
	"github.com/at-ishikawa/pacha/internal/dictionary"
	"github.com/at-ishikawa/pacha/internal/search"
	"github.com/at-ishikawa/pacha/internal/server"
	"github.com/at-ishikawa/pacha/internal/web"
	"github.com/at-ishikawa/pacha/schemas"
)

var (
	configFile string
	debugMode  bool
	migrate    bool
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:           "pacha-server",
		Short:         "Malayalam–English dictionary HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	rootCmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations on startup")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(ctx context.Context) error {
		return db.Close()
	})
	if err := database.WaitReady(ctx, db, cfg.Database.ConnectRetryAttempts); err != nil {
		_ = db.Close()
		return fmt.Errorf("database.WaitReady() > %w", err)
	}
	if migrate {
		applied, err := database.NewMigrator(db, schemas.Migrations).Up(ctx)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("migrator.Up() > %w", err)
		}
		slog.Default().Info("migrations checked", "applied", applied)
	}

	searchService, err := search.NewService(dictionary.NewDBEntryRepository(db), cfg.Search)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("search.NewService() > %w", err)
	}
	pages, err := web.NewHandler(searchService, cfg.Web)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("web.NewHandler() > %w", err)
	}

	handler := server.NewHandler(cfg.Server, server.Dependencies{
		Searcher: searchService,
		DB:       db,
		Pages:    pages.Routes(),
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	app.AddShutdownHook("http", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
