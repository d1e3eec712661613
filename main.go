package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertof/go-btinfo/enrich"
	"github.com/robertof/go-btinfo/hci"
	"github.com/robertof/go-btinfo/inventory"
	"github.com/robertof/go-btinfo/metrics"
	"github.com/robertof/go-btinfo/oui"
	"github.com/robertof/go-btinfo/scanner"
	"github.com/robertof/go-btinfo/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	zerolog.DurationFieldUnit = time.Second
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000",
	})

	cfg := ParseArgs()

	if cfg.Trace || os.Getenv("TRACE") != "" {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	} else if cfg.Debug || os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := hci.WrapContextWithSigHandler(context.WithCancel(context.Background()))
	host := hci.NewHost(cfg.BluetoothConnParams)

	if cfg.DiscoverDevices {
		doDeviceDiscovery(ctx, cfg, host)
		return
	}

	log.Info().
		Str("Database", cfg.DatabasePath).
		Str("Table", cfg.Table).
		Str("BindAddr", cfg.BindAddress).
		Int("BluetoothDeviceID", cfg.BluetoothDeviceId).
		Stringer("ConnParams", &cfg.BluetoothConnParams).
		Msg("Starting with the specified configuration")

	st, inv := initInventory(ctx, cfg)

	enricher := enrich.New(
		enrich.NewHCIRadio(host),
		oui.NewDefault(cfg.HWDBDirs...),
		cfg.enrichOptions(),
	)

	loop := scanner.NewLoop(host, enricher, inv, scanner.Options{
		Adapter:    cfg.BluetoothDeviceId,
		Interval:   cfg.Interval,
		RetryDelay: cfg.RetryDelay,
		Inquiry:    scanner.DefaultInquiryParams(),
	})

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return loop.Run(ctx)
	})

	if cfg.WatchAdapters {
		eg.Go(func() error {
			return hci.WatchAdapters(ctx)
		})
	}

	if cfg.BindAddress != "" {
		eg.Go(func() error {
			return serveMetrics(ctx, cfg, inv)
		})
	}

	err := eg.Wait()

	if cerr := st.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("Failed to close database")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Discovery stopped")
	}

	log.Info().Int("KnownDevices", inv.Len()).Msg("Bye")
}

func initInventory(ctx context.Context, cfg config) (*store.Store, *inventory.Inventory) {
	st, err := store.Open(store.Config{
		Path:  cfg.DatabasePath,
		Table: cfg.Table,
	})

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		log.Fatal().Err(err).Msg("Failed to prepare database")
	}

	inv := inventory.New(st)

	if err := inv.Load(ctx, st); err != nil {
		st.Close()
		log.Fatal().Err(err).Msg("Failed to load known devices")
	}

	return st, inv
}

func serveMetrics(ctx context.Context, cfg config, inv *inventory.Inventory) error {
	registry := prometheus.NewRegistry()

	hci.RegisterMetrics(registry)
	scanner.RegisterMetrics(registry)
	metrics.RegisterCollector(inv.Snapshot, registry)

	if cfg.EnableMetamonitoring {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.BindAddress,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("ListenAddress", cfg.BindAddress).
		Msg("Starting Prometheus server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
