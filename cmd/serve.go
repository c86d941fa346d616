package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/archive"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/configuration"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/dashboard"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/history"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/risk"
	"github.com/SpyglassRealty/AgentHubPortal-sub001/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the risk scoring HTTP API",
	RunE:  runServe,
}

// setup loads the configuration, configures logging into logOut and compiles
// the rules.
func setup(logOut io.Writer) (*configuration.AppConfig, *risk.Scorer, error) {
	config, err := configuration.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load configuration: %w", err)
	}
	prepareLogger(config.Logger.Level, logOut)

	rules, err := risk.LoadRules(config.Analysis.Rules)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load rules: %w", err)
	}
	scorer := risk.NewScorer(rules, risk.Options{
		TakeRate:  config.Analysis.TakeRate,
		MatchByID: config.Analysis.MatchByID,
	})
	slog.Debug("Rules compiled", "rules", scorer.Rules(), "file", config.Analysis.Rules)

	return config, scorer, nil
}

func dashboardOptions(config *configuration.AppConfig) dashboard.Options {
	return dashboard.Options{
		IncludeStatuses: config.Analysis.IncludeStatuses,
		TopAlerts:       config.Analysis.TopAlerts,
	}
}

func newArchive(config configuration.ArchiveConfig) archive.Archive {
	if config.File == "" {
		return archive.Nop{}
	}
	return archive.NewJsonArchive(config.File, config.Size, config.Amount)
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, scorer, err := setup(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	appCtx, appCancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	historyRepo := history.NewRepository(config.History.Length, config.History.TTL)
	profileArchive := newArchive(config.Archive)
	defer profileArchive.Close()

	router := server.NewApiV1Router(
		scorer,
		historyRepo,
		profileArchive,
		dashboardOptions(config),
		config.Server.MaxBodyBytes,
	)
	srv := server.NewServer(config.Server.Address, router)

	group, groupCtx := errgroup.WithContext(appCtx)
	group.Go(func() error {
		historyRepo.Serve(groupCtx, config.History.Interval)
		return nil
	})
	group.Go(func() error {
		slog.Info("Server listening " + config.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown", "error", err)
		}
		slog.Info("Server stopped")
		return nil
	})

	return group.Wait()
}
