// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/onebot-dev/onebot/internal/admin"
	"github.com/onebot-dev/onebot/internal/bot"
	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/config"
	"github.com/onebot-dev/onebot/internal/gateway/console"
	"github.com/onebot-dev/onebot/internal/loader"
	"github.com/onebot-dev/onebot/internal/logging"
	"github.com/onebot-dev/onebot/internal/music"
	"github.com/onebot-dev/onebot/internal/observability"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

// errRestart is returned by run when an operator asked for a restart.
var errRestart = errors.New("restart requested")

// shutdownTimeout bounds stopping the HTTP servers.
const shutdownTimeout = 5 * time.Second

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot on the console gateway",
		Long: `Run the bot. Input lines from stdin become chat messages and
replies are printed to stdout. A restart request exits with code 3 so a
supervisor can start the bot again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logging.SetDefault(version, cfg.Log.Format, cfg.Log.Level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runBot wires the bot together and runs it until ctx ends or a restart is
// requested.
func runBot(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	src, err := buildSource(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gw := console.New(in, out, cfg.Console.User)
	defer func() { _ = gw.Close() }()

	status := loader.NewStatus()
	metricsSrv := observability.NewServer(cfg.Metrics.Addr, status.FullyLoaded,
		command.RegisterMetrics, loader.RegisterMetrics, music.RegisterMetrics)

	logger := slog.Default()
	registry := command.NewRegistry(command.WithCatalog(gw), command.WithLogger(logger))

	var restart atomic.Bool
	b := bot.New(gw, registry, src,
		bot.WithLogger(logger),
		bot.WithUsageReport(cfg.Env.SendUsageData),
		bot.WithLoaderOptions(
			loader.WithStatus(status),
			loader.WithActivationTimeout(cfg.Modules.ActivationTimeout),
			loader.WithCommandsTimeout(cfg.Modules.CommandsTimeout),
		),
		bot.WithRestarter(bot.RestarterFunc(func(context.Context) error {
			restart.Store(true)
			metricsSrv.Metrics().Restarts.Inc()
			cancel()
			return nil
		})),
	)

	var stops []func(context.Context) error
	if cfg.Metrics.Addr != "" {
		if _, err := metricsSrv.Start(); err != nil {
			return err
		}
		stops = append(stops, metricsSrv.Stop)
	}
	if cfg.Admin.Addr != "" {
		adminSrv := admin.NewServer(cfg.Admin.Addr, b.Modules(), b.Commands())
		if _, err := adminSrv.Start(); err != nil {
			return err
		}
		stops = append(stops, adminSrv.Stop)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		for _, stop := range stops {
			if err := stop(sctx); err != nil {
				errutil.LogError(slog.Default(), "server shutdown failed", err)
			}
		}
	}()

	if err := b.Run(ctx); err != nil {
		return err
	}
	if restart.Load() {
		slog.Info("exiting for restart", "exit_code", ExitRestart)
		return errRestart
	}
	return nil
}
