package scanner

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/robertof/go-btinfo/device"
	"github.com/robertof/go-btinfo/enrich"
	"github.com/robertof/go-btinfo/hci"
	"github.com/robertof/go-btinfo/inventory"
	"github.com/robertof/go-btinfo/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultInquiryLength       = 8
	DefaultInquiryMaxResponses = 255

	DefaultRetryDelay = time.Second
)

func DefaultInquiryParams() hci.InquiryParams {
	return hci.InquiryParams{
		Length:       DefaultInquiryLength,
		MaxResponses: DefaultInquiryMaxResponses,
		Flags:        hci.FlagFlushCache,
	}
}

type Radio interface {
	Route(addr net.HardwareAddr) (int, error)
	Inquiry(ctx context.Context, id int, params hci.InquiryParams) ([]hci.InquiryResult, error)
}

type Enricher interface {
	Enrich(ctx context.Context, addr net.HardwareAddr, preferredAdapter *int) (device.EnrichmentResult, error)
}

type Merger interface {
	Merge(ctx context.Context, addr string, deviceType device.Field[string], res device.EnrichmentResult) (inventory.Action, device.Record, error)
}

type Options struct {
	// Adapter to scan with and to enrich through. Negative picks the default
	// route for scans and resolves per device for enrichment.
	Adapter int
	// Pause between cycles.
	Interval time.Duration
	// Minimum pause after a cycle whose inquiry failed.
	RetryDelay time.Duration
	Inquiry    hci.InquiryParams
}

// Loop runs inquiry cycles back to back and pushes every discovered device
// through enrichment and the inventory, one device at a time.
type Loop struct {
	radio     Radio
	enricher  Enricher
	inventory Merger
	opts      Options
}

func NewLoop(radio Radio, enricher Enricher, inv Merger, opts Options) *Loop {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	return &Loop{
		radio:     radio,
		enricher:  enricher,
		inventory: inv,
		opts:      opts,
	}
}

// Run loops until ctx is done, which is not an error, or a cycle fails
// fatally.
func (l *Loop) Run(ctx context.Context) error {
	log.Info().
		Int("DeviceID", l.opts.Adapter).
		Dur("Interval", l.opts.Interval).
		Stringer("Inquiry", l.opts.Inquiry).
		Msg("Starting discovery loop")

	for ctx.Err() == nil {
		inquiryFailed, err := l.runCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Discovery loop is shutting down")
				return nil
			}

			return err
		}

		pause := l.opts.Interval
		if inquiryFailed && pause < l.opts.RetryDelay {
			pause = l.opts.RetryDelay
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Discovery loop is shutting down")
			return nil
		case <-time.After(pause):
		}
	}

	log.Info().Msg("Discovery loop is shutting down")

	return nil
}

// RunCycle runs a single inquiry and processes its results. Only fatal
// errors are returned.
func (l *Loop) RunCycle(ctx context.Context) error {
	_, err := l.runCycle(ctx)

	return err
}

// runCycle also reports whether the inquiry failed without being fatal.
func (l *Loop) runCycle(ctx context.Context) (bool, error) {
	logger := log.With().Str("Cycle", uuid.NewString()).Logger()

	id := l.opts.Adapter
	if id < 0 {
		var err error

		id, err = l.radio.Route(nil)
		if err != nil {
			return false, fmt.Errorf("failed to find an adapter to scan with: %w", err)
		}
	}

	logger.Debug().Int("DeviceID", id).Msg("Starting scan")
	cyclesCounter.Inc()

	results, err := l.radio.Inquiry(ctx, id, l.opts.Inquiry)
	if err != nil {
		if utils.ErrorIsAnyOf(err, hci.ErrNoAdapter, hci.ErrSocket, context.Canceled) {
			return false, fmt.Errorf("inquiry failed: %w", err)
		}

		logger.Warn().Err(err).Dur("RetryIn", max(l.opts.Interval, l.opts.RetryDelay)).Msg("Inquiry failed, treating as empty")

		return true, nil
	}

	logger.Info().
		Int("Devices", len(results)).
		Msg("Scan finished")

	for i, r := range results {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if err := l.processDevice(ctx, logger, i+1, r); err != nil {
			return false, err
		}
	}

	return false, nil
}

func (l *Loop) processDevice(ctx context.Context, logger zerolog.Logger, n int, r hci.InquiryResult) error {
	addr := device.FormatAddress(r.Addr)

	var deviceType device.Field[string]
	if label, ok := r.Class.Type(); ok {
		deviceType = device.Some(label)
	}

	logger.Debug().
		Int("N", n).
		Str("Addr", addr).
		Stringer("Class", r.Class).
		Stringer("Type", deviceType).
		Msg("Enriching device")

	res, err := l.enricher.Enrich(ctx, r.Addr, l.preferredAdapter())
	if err != nil {
		if utils.ErrorIsAnyOf(err, enrich.ErrNoAdapter) {
			logger.Error().Err(err).Str("Addr", addr).Msg("No adapter available or connected")
		}

		return fmt.Errorf("failed to enrich %s: %w", addr, err)
	}

	enrichmentsCounter.WithLabelValues(outcome(res)).Inc()

	action, rec, err := l.inventory.Merge(ctx, addr, deviceType, res)
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", addr, err)
	}

	mergesCounter.WithLabelValues(action.String()).Inc()

	logger.Info().
		Int("N", n).
		Str("Addr", rec.Address).
		Stringer("Action", action).
		Stringer("Name", rec.Name).
		Stringer("Company", rec.CompanyName).
		Stringer("Type", rec.DeviceType).
		Stringer("LMPVersion", rec.LMPVersion).
		Stringer("LMPSubVersion", rec.LMPSubVersion).
		Stringer("Manufacturer", rec.ManufacturerName).
		Msg("Device")

	return nil
}

func (l *Loop) preferredAdapter() *int {
	if l.opts.Adapter < 0 {
		return nil
	}

	id := l.opts.Adapter

	return &id
}

func outcome(res device.EnrichmentResult) string {
	if res.Success {
		return "success"
	}

	return "failure"
}
