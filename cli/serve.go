package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giygas/drug-mentions/config"
	"github.com/giygas/drug-mentions/data"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/publicationsparser"
	"github.com/giygas/drug-mentions/scheduler"
	"github.com/giygas/drug-mentions/server"
	"github.com/giygas/drug-mentions/validation"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(deps *Deps) *cobra.Command {
	var port, address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mention index over HTTP and rebuild it on schedule",
		Long: `Serve builds the mention index, publishes it over HTTP and rebuilds it every
day at the times listed in REFRESH_AT. The previous index keeps being
served while a rebuild runs, and when one fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("address") {
				cfg.Address = address
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT)")
	cmd.Flags().StringVar(&address, "address", "", "listen address (default $ADDRESS)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.InitLogger(cfg.LogDir, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer func() { _ = logging.Close() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dataContainer := data.NewDataContainer()
	parser := publicationsparser.NewRecordsParser(cfg.DataDir, cfg.SourceBaseURL)
	sched := scheduler.NewScheduler(dataContainer, parser, validation.NewDataValidator(), cfg.RefreshAt)
	defer sched.Stop()

	srv := server.NewServer(cfg, dataContainer)
	errCh := make(chan error, 2)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	// The server answers /health as unhealthy until the initial build is published
	go func() {
		if err := sched.Start(); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received")
	case runErr = <-errCh:
		logging.Error("Stopping service", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}
