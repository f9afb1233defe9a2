package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/folder-sync/internal/config"
	"github.com/alexjbarnes/folder-sync/internal/logging"
	"github.com/alexjbarnes/folder-sync/internal/mirror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folder-sync [source_folder replica_folder interval log_file]",
		Short: "One-way periodic folder synchronization",
		Long: `folder-sync keeps a replica folder identical to a source folder.

Every interval (in minutes) it copies new and modified regular files from
the source into the replica and removes replica files that no longer exist
in the source. Only the top level of each folder is synchronized.

Settings can also be supplied through SOURCE_FOLDER, REPLICA_FOLDER,
SYNC_INTERVAL, LOG_FILE, and CONFIG_FILE (a YAML file).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 4 {
				return fmt.Errorf("accepts 0 or 4 args, received %d", len(args))
			}
			return nil
		},
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}
}

func run(parent context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(cfg.ReplicaFolder, 0o755); err != nil {
		return fmt.Errorf("creating replica folder: %w", err)
	}

	var logFile io.Writer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		logFile = f
	}

	logger := logging.New(cfg.Environment, logFile)
	logger.Info("folder-sync starting",
		slog.String("version", Version),
		slog.String("source", cfg.SourceFolder),
		slog.String("replica", cfg.ReplicaFolder),
		slog.Int("interval_minutes", cfg.Interval),
		slog.Bool("watch_source", cfg.WatchSource),
	)

	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncer := mirror.NewSyncer(afero.NewOsFs(), cfg.SourceFolder, cfg.ReplicaFolder, logger)

	scheduler, err := mirror.NewScheduler(syncer, mirror.SchedulerOptions{
		Interval:     cfg.SyncInterval(),
		PollInterval: cfg.PollInterval,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if cfg.WatchSource {
		watcher := mirror.NewSourceWatcher(cfg.SourceFolder, scheduler.Trigger, 0, logger)
		g.Go(func() error {
			return watcher.Watch(gctx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("folder-sync stopped")
		return nil
	}

	return err
}
