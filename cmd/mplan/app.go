package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/logging"
	"github.com/seaplan/mplan/internal/maneuver"
	intOtel "github.com/seaplan/mplan/internal/otel"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app holds what every command needs: configuration, logging and the maneuver registry.
type app struct {
	slog     *logging.SlogManager
	logger   *slog.Logger
	zlog     zerolog.Logger
	provider *intOtel.Provider
	reg      *registry.Registry
	logFile  io.WriteCloser
}

// commonFlags registers the flags every command accepts and binds them to viper keys.
func commonFlags(fs *pflag.FlagSet) *string {
	configDir := fs.String("config", ".", "directory holding "+config.FileName)
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("profiles", "", "vehicle profile YAML file")
	_ = viper.BindPFlag("logLevel", fs.Lookup("log-level"))
	_ = viper.BindPFlag("vehicles.profiles", fs.Lookup("profiles"))
	return configDir
}

func newApp(configDir string) (*app, error) {
	configErr := config.Load(configDir)

	a := &app{slog: logging.NewSlogManager()}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs dir: %w", err)
	}
	a.logFile = logging.RotatingFile(logsDir, "mplan")

	provider, err := intOtel.New(config.GetOTelConfig(), a.logFile)
	if err != nil {
		return nil, err
	}
	a.provider = provider

	a.slog.Setup(logging.Options{
		Level:       config.GetString("logLevel"),
		File:        a.logFile,
		Console:     os.Stderr,
		Provider:    provider.LoggerProvider(),
		ServiceName: config.GetOTelConfig().ServiceName,
	})
	a.logger = a.slog.Logger()
	a.zlog = zerolog.New(a.logFile).Level(zerologLevel(config.GetString("logLevel"))).
		With().Timestamp().Logger()

	if configErr != nil {
		a.logger.Warn("Failed to load config, using defaults", "error", configErr)
	}

	var profiles []registry.Profile
	if path := config.GetString("vehicles.profiles"); path != "" {
		if profiles, err = registry.LoadProfiles(path); err != nil {
			return nil, err
		}
		a.logger.Info("Loaded vehicle profiles", "path", path, "vehicles", len(profiles))
	}
	a.reg = registry.New(a.slog.Named("registry"),
		registry.WithIDs(maneuver.DefaultIDs),
		registry.WithProfiles(profiles),
	)
	return a, nil
}

func zerologLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.slog.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flush logs:", err)
	}
	if err := a.provider.Shutdown(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "shutdown telemetry:", err)
	}
	_ = a.logFile.Close()
}
