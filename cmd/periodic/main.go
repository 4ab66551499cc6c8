package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tupyy/periodic/internal/config"
	"github.com/tupyy/periodic/internal/services"
	"github.com/tupyy/periodic/internal/store"
	"github.com/tupyy/periodic/internal/store/migrations"
	"github.com/tupyy/periodic/pkg/pool"
	"github.com/tupyy/periodic/pkg/scheduler"
)

var configPath string

func main() {
	cmd := &cobra.Command{
		Use:          "periodic",
		Short:        "Drive recurring tasks from a config file on a shared worker pool",
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open run journal: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return err
	}
	st := store.NewStore(db)
	defer st.Close()

	p := pool.New(cfg.Workers)
	sched := scheduler.NewWithConfig(p, scheduler.Config{HistorySize: cfg.HistorySize})

	runner := services.NewRunner(sched, st)
	if err := runner.Start(ctx, cfg.Tasks); err != nil {
		sched.Shutdown()
		p.Close()
		return err
	}

	color.Green("periodic: %d task(s) scheduled on %d worker(s)", sched.NumScheduledTasks(), cfg.Workers)
	<-ctx.Done()

	color.Yellow("periodic: shutting down, waiting for in-flight callbacks")
	sched.Shutdown()
	p.Close()
	color.Green("periodic: done")
	return nil
}

func buildLogger(cfg *config.Configuration) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.LogFormat == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
