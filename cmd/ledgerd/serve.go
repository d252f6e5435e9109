package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidebook/accounts-engine/api"
	"github.com/tidebook/accounts-engine/logger"
	"github.com/tidebook/accounts-engine/maintenance"
	"github.com/tidebook/accounts-engine/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	// Startup safety backup, then the periodic schedule. Neither is fatal.
	if path, err := maintenance.Backup(store.Path(), cfg.BackupDir); err != nil {
		log.Warn().Err(err).Msg("startup backup failed")
	} else if path != "" {
		log.Info().Str("backup", path).Msg("startup backup complete")
	}

	var sched *maintenance.Scheduler
	if cfg.BackupInterval > 0 && store.Path() != "" {
		sched, err = maintenance.NewScheduler(store.Path(), cfg.BackupDir,
			time.Duration(cfg.BackupInterval)*time.Hour)
		if err != nil {
			return fmt.Errorf("backup scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
