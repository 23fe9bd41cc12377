package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/pipeline"
	"github.com/amlscreen/amlreport/pkg/server"
	"github.com/amlscreen/amlreport/pkg/telemetry"
)

func (e env) cmdServe(args []string) error {
	fs := e.flagSet("serve", "[flags]")
	var cf commonFlags
	cf.register(fs)
	opts := server.DefaultOptions()
	fs.StringVar(&opts.Addr, "addr", opts.Addr, "Listen address")
	fs.Float64Var(&opts.RateLimit, "rate", opts.RateLimit, "Requests per second on /v1 routes (0 disables)")
	fs.IntVar(&opts.Burst, "burst", opts.Burst, "Rate limiter burst")
	fs.Int64Var(&opts.MaxBodyBytes, "max-body", opts.MaxBodyBytes, "Request body limit in bytes")
	archivePath := fs.String("archive", "", "Archive every rendered PDF in this SQLite database")
	otlp := fs.String("otlp", os.Getenv(envOTLPEndpoint), "OTLP gRPC endpoint for traces (default: $"+envOTLPEndpoint+")")
	otlpInsecure := fs.Bool("otlp-insecure", false, "Plaintext connection to the OTLP endpoint")
	noMetrics := fs.Bool("no-metrics", false, "Disable the /metrics endpoint")
	if err := parse(fs, args); err != nil {
		return err
	}

	logger, err := cf.setup(e.stderr)
	if err != nil {
		return err
	}
	th, err := cf.theme()
	if err != nil {
		return err
	}

	if !*noMetrics {
		opts.Metrics = telemetry.NewMetrics()
	}
	tracer, err := telemetry.NewTracer(telemetry.TracingOptions{Endpoint: *otlp, Insecure: *otlpInsecure})
	if err != nil {
		return err
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("trace flush failed", slog.String("error", err.Error()))
		}
	}()

	if *archivePath != "" {
		store, err := archive.Open(*archivePath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Archive = store
	}

	opts.Logger = logger
	opts.Pipeline = pipeline.New(pipeline.Options{
		Theme:   th,
		Metrics: opts.Metrics,
		Tracer:  tracer,
		Archive: opts.Archive,
		Logger:  logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting",
		slog.String("version", defaults.Version),
		slog.String("addr", opts.Addr),
		slog.Bool("archive", opts.Archive != nil),
		slog.Bool("tracing", *otlp != ""),
	)
	return server.New(opts).Run(ctx)
}
