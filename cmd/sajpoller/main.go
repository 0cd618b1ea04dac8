// cmd/sajpoller/main.go
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/api"
	"github.com/tamzrod/saj-telemetry/internal/config"
	"github.com/tamzrod/saj-telemetry/internal/fault"
	"github.com/tamzrod/saj-telemetry/internal/metrics"
	"github.com/tamzrod/saj-telemetry/internal/poller"
	"github.com/tamzrod/saj-telemetry/internal/store"
	"github.com/tamzrod/saj-telemetry/internal/writer"
)

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if len(os.Args) < 2 {
		boot.Fatal().Msg("usage: sajpoller <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		boot.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	log := newLogger(cfg.Log, os.Stderr)

	faults := fault.DefaultTables
	if cfg.FaultsFile != "" {
		if faults, err = fault.LoadTables(cfg.FaultsFile); err != nil {
			log.Fatal().Err(err).Str("path", cfg.FaultsFile).Msg("fault tables load failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Shared sinks
	// --------------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sinks := writer.Sinks{
		Metrics:     metrics.New(reg),
		Cache:       writer.NewCache(),
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         cfg.MQTT.QoS,
	}

	var history api.History
	if cfg.Storage.Path != "" {
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("store open failed")
		}
		defer st.Close()

		sinks.Store = st
		history = st

		if cfg.Storage.RetentionDays > 0 {
			go pruneLoop(ctx, st, cfg.Storage.RetentionDays, log)
		}
	}

	if cfg.MQTT.Broker != "" {
		mc, err := writer.ConnectMQTT(cfg.MQTT, log.With().Str("component", "mqtt").Logger())
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect failed")
		}
		defer mc.Disconnect(250)
		sinks.MQTT = mc
	}

	// --------------------
	// Build per-inverter pipelines
	// --------------------

	var wg sync.WaitGroup

	for _, inv := range cfg.Inverters {
		unitLog := log.With().Str("inverter", inv.ID).Logger()

		p, err := poller.Build(inv, faults, log)
		if err != nil {
			log.Fatal().Err(err).Str("inverter", inv.ID).Msg("poller build failed")
		}

		fan, err := writer.Build(inv.ID, sinks)
		if err != nil {
			log.Fatal().Err(err).Str("inverter", inv.ID).Msg("writer build failed")
		}

		// ---- channel between poller and orchestrator ----
		out := make(chan poller.PollResult, 1)
		remove := p.AddListener(func(res poller.PollResult) {
			select {
			case out <- res:
			case <-ctx.Done():
			}
		})

		wg.Add(2)
		go func() {
			defer wg.Done()
			orchestrate(ctx, out, fan, unitLog)
		}()
		go func() {
			defer wg.Done()
			defer remove()
			p.Run(ctx)
		}()

		unitLog.Info().
			Str("transport", inv.Source.Transport).
			Str("endpoint", inv.Source.Endpoint).
			Uint8("unit_id", inv.Source.UnitID).
			Int("interval_ms", inv.Poll.IntervalMs).
			Msg("inverter started")
	}

	// --------------------
	// HTTP API
	// --------------------

	var srv *api.Server
	if cfg.HTTP.Listen != "" {
		srv = api.NewServer(cfg.HTTP.Listen, sinks.Cache, history, reg, log)
		srv.Start()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if srv != nil {
		if err := srv.Stop(context.Background()); err != nil {
			log.Error().Err(err).Msg("api stop failed")
		}
	}
	wg.Wait()
}

func newLogger(c config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	w := out
	if c.Format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func pruneLoop(ctx context.Context, st *store.Store, days int, log zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().AddDate(0, 0, -days)
		if n, err := st.Prune(ctx, cutoff); err != nil {
			log.Error().Err(err).Msg("history prune failed")
		} else if n > 0 {
			log.Info().Int64("rows", n).Time("before", cutoff).Msg("history pruned")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
