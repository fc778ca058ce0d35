package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/seaplan/mplan/internal/api"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/dispatcher"
	"github.com/seaplan/mplan/internal/influx"
	"github.com/seaplan/mplan/internal/link"
	"github.com/seaplan/mplan/internal/logging"
	"github.com/seaplan/mplan/internal/monitor"
	"github.com/seaplan/mplan/internal/storage"
	"github.com/seaplan/mplan/internal/worker"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const snapshotEvery = 5 * time.Minute

// runServe starts the HTTP API and, when a link is configured, the vehicle link with its
// dispatcher. It stops on SIGINT or SIGTERM.
func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configDir := commonFlags(fs)
	fs.String("listen", "", "API listen address")
	fs.String("link-url", "", "vehicle gateway websocket URL")
	fs.String("serial", "", "vehicle modem serial port")
	fs.String("vehicle", "", "vehicle at the other end of the link")
	_ = viper.BindPFlag("api.listen", fs.Lookup("listen"))
	_ = viper.BindPFlag("link.url", fs.Lookup("link-url"))
	_ = viper.BindPFlag("link.serialPort", fs.Lookup("serial"))
	_ = viper.BindPFlag("link.vehicle", fs.Lookup("vehicle"))
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*configDir)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, templates, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer closeLibrary(a, backend)

	stats := a.openStats(ctx)
	deps := worker.Dependencies{
		Registry: a.reg,
		Logger:   a.slog.Named("worker"),
		Workers:  config.GetInt("workers"),
	}
	if stats != nil {
		deps.Stats = stats
		defer func() { _ = stats.Close() }()
	}
	w := worker.NewManager(deps)

	server := api.NewServer(a.reg, templates, w, a.slog.Named("api"))

	g, ctx := errgroup.WithContext(ctx)
	if s, ok := backend.(storage.Snapshotter); ok && config.GetString("storage.memory.snapshotPath") != "" {
		g.Go(func() error { return a.snapshotLoop(ctx, s) })
	}

	var pending func() int
	linkCfg := config.GetLinkConfig()
	t, err := link.Open(linkCfg, a.slog.Named("link"))
	switch {
	case errors.Is(err, link.ErrNoLink):
		a.logger.Info("No vehicle link configured")
	case err != nil:
		return err
	default:
		defer func() { _ = t.Close() }()
		if p, ok := t.(interface{ Pending() int }); ok {
			pending = p.Pending
		}
		if err := a.startLink(ctx, g, t, linkCfg.Vehicle, w); err != nil {
			return err
		}
		server.SetUploader(func(ctx context.Context, vehicle, plan string, docs [][]byte) error {
			if vehicle != linkCfg.Vehicle {
				return fmt.Errorf("%w: no link to %s", link.ErrClosed, vehicle)
			}
			return w.Upload(ctx, t, vehicle, plan, docs)
		})
	}

	mon := monitor.NewService(monitor.Dependencies{
		Templates:  templates,
		Worker:     w,
		Pending:    pending,
		Logger:     a.slog.Named("monitor"),
		StatusPath: filepath.Join(config.GetString("logsDir"), "status.json"),
	})
	mon.Start()
	defer mon.Stop()

	g.Go(func() error {
		return server.ListenAndServe(ctx, config.GetAPIConfig().Listen)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.logger.Info("Shutting down", "error", err)
	return err
}

// startLink routes frames arriving from the vehicle through a dispatcher.
func (a *app) startLink(ctx context.Context, g *errgroup.Group, t link.Transport, vehicle string, w *worker.Manager) error {
	d, err := dispatcher.New(logging.NewDispatcherLogger(a.zlog.With().Str("component", "dispatcher").Logger()))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	w.RegisterHandlers(d)
	d.Fallback(func(e dispatcher.Event) error {
		a.logger.Debug("Ignoring frame", "vehicle", e.Vehicle, "abbrev", e.Frame.Abbrev)
		return nil
	})

	g.Go(func() error {
		defer d.Close()
		err := d.Run(logging.WithVehicle(ctx, vehicle), vehicle, t.Frames())
		if err == nil {
			a.logger.Warn("Vehicle link closed", "vehicle", vehicle)
		}
		return err
	})
	a.logger.Info("Vehicle link ready", "vehicle", vehicle)
	return nil
}

// openStats connects the statistics sink. It returns nil when statistics are disabled or
// unavailable.
func (a *app) openStats(ctx context.Context) *influx.Manager {
	backup := filepath.Join(config.GetString("logsDir"), "stats.lp.gz")
	m := influx.NewManager(config.GetInfluxConfig(), a.zlog.With().Str("component", "influx").Logger(), backup)
	if err := m.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			a.logger.Error("Failed to connect to InfluxDB", "error", err)
		}
		return nil
	}
	return m
}

// snapshotLoop persists a snapshotting library periodically until ctx is done.
func (a *app) snapshotLoop(ctx context.Context, s storage.Snapshotter) error {
	ticker := time.NewTicker(snapshotEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Snapshot(); err != nil {
				a.logger.Error("Failed to snapshot template library", "error", err)
			}
		}
	}
}

func closeLibrary(a *app, backend storage.Backend) {
	if err := backend.Close(); err != nil {
		a.logger.Error("Failed to close template library", "error", err)
	}
}
