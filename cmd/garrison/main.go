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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opsdeck/garrison/internal/config"
	"github.com/opsdeck/garrison/internal/http/server"
	"github.com/opsdeck/garrison/internal/observability/logger"
	storepg "github.com/opsdeck/garrison/internal/store/pg"
	migrations "github.com/opsdeck/garrison/migrations/postgres"
)

func main() {
	// .env es opcional; en prod la config viene de env vars reales.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "garrison",
		Short: "Servicio de autenticación y roles para la comunidad",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.example.yaml", "Path al YAML de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	var downSteps bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath, downSteps)
		},
	}
	migrateCmd.Flags().BoolVar(&downSteps, "down", false, "Revierte las migraciones en orden inverso")

	root.AddCommand(serveCmd, migrateCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	// Fail-fast: sin signing secret válido no arrancamos.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validate: %w", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "garrison"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := server.Build(ctx, cfg)
	if err != nil {
		_ = cleanup()
		return fmt.Errorf("build server: %w", err)
	}
	defer func() { _ = cleanup() }()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("servidor escuchando", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("apagando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrate(configPath string, down bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %q)", cfg.Storage.Driver)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "garrison-migrate"})
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := storepg.New(ctx, cfg.Storage.DSN, storepg.Config{})
	if err != nil {
		return fmt.Errorf("conectar postgres: %w", err)
	}
	defer st.Close()

	if down {
		if err := st.RunMigrationsDown(ctx, migrations.FS); err != nil {
			return err
		}
		logger.L().Info("migraciones revertidas")
		return nil
	}
	if err := st.RunMigrations(ctx, migrations.FS); err != nil {
		return err
	}
	logger.L().Info("migraciones aplicadas")
	return nil
}
