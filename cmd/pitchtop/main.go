// Command pitchtop replays a CBOE PITCH capture and prints the symbols
// with the most traded volume.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/erain9/pitchvolume/config"
	"github.com/erain9/pitchvolume/pkg/logging"
	"github.com/erain9/pitchvolume/pkg/otel"
	"github.com/erain9/pitchvolume/pkg/pipeline"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	// .env is optional, real environment variables win
	envErr := godotenv.Load()

	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		log.Error().Err(err).Msg("Failed to load configuration")
		return 2
	}

	logCfg := logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Format == "pretty",
		Output: os.Stderr,
	}
	logging.Setup(logCfg)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Failed to load .env file")
	}

	zlog := logging.NewZapLogger(logCfg)
	defer func() { _ = zlog.Sync() }()

	cleanup, err := otel.Init(otel.Config{
		ServiceName:      cfg.Telemetry.ServiceName,
		ServiceVersion:   version,
		Endpoint:         cfg.Telemetry.Endpoint,
		CollectorEnabled: cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize OpenTelemetry")
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx, cfg, pipeline.WithZapLogger(zlog))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("Interrupted, no report produced")
			return 130
		}
		log.Error().Err(err).Msg("Replay failed")
		return 1
	}

	if cfg.Output.Format == config.FormatJSON {
		err = printJSON(stdout, result)
	} else {
		err = printTable(stdout, result)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to print report")
		return 1
	}
	return 0
}
