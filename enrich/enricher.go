package enrich

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/robertof/go-btinfo/device"
	"github.com/robertof/go-btinfo/hci"
	"github.com/rs/zerolog/log"
)

var ErrNoAdapter = errors.New("no bluetooth adapter available for device")

const (
	DefaultConnectTimeout    = 25 * time.Second
	DefaultNameTimeout       = 25 * time.Second
	DefaultVersionTimeout    = 20 * time.Second
	DefaultDisconnectTimeout = 10 * time.Second
	DefaultConnectSettle     = 1 * time.Second
	DefaultDisconnectSettle  = 10 * time.Millisecond
)

type Options struct {
	ConnectTimeout    time.Duration
	NameTimeout       time.Duration
	VersionTimeout    time.Duration
	DisconnectTimeout time.Duration

	// Pause after a new link comes up, identity queries on a fresh link
	// tend to fail.
	ConnectSettle time.Duration
	// Pause before tearing down a link we created.
	DisconnectSettle time.Duration
}

func DefaultOptions() Options {
	return Options{
		ConnectTimeout:    DefaultConnectTimeout,
		NameTimeout:       DefaultNameTimeout,
		VersionTimeout:    DefaultVersionTimeout,
		DisconnectTimeout: DefaultDisconnectTimeout,
		ConnectSettle:     DefaultConnectSettle,
		DisconnectSettle:  DefaultDisconnectSettle,
	}
}

type Radio interface {
	ConnectedAdapter(addr net.HardwareAddr) (int, bool)
	Route(addr net.HardwareAddr) (int, error)
	Open(id int) (Adapter, error)
}

type Adapter interface {
	Connection(addr net.HardwareAddr) (uint16, bool)
	Connect(ctx context.Context, addr net.HardwareAddr, timeout time.Duration) (uint16, error)
	ReadRemoteName(ctx context.Context, addr net.HardwareAddr, timeout time.Duration) (string, error)
	ReadRemoteVersion(ctx context.Context, handle uint16, timeout time.Duration) (hci.RemoteVersion, error)
	Disconnect(ctx context.Context, handle uint16, timeout time.Duration) error
	Close() error
}

type VendorLookup interface {
	Lookup(addr net.HardwareAddr) (string, bool)
}

type connection struct {
	handle uint16
	// we created the link and must tear it down.
	owned bool
}

type Enricher struct {
	radio   Radio
	vendors VendorLookup
	opts    Options
}

func New(radio Radio, vendors VendorLookup, opts Options) *Enricher {
	return &Enricher{
		radio:   radio,
		vendors: vendors,
		opts:    opts,
	}
}

// Enrich connects to addr (or reuses an existing link) and reads whatever
// identity information the device gives up. A result with Success false
// means no link could be obtained. The returned error is reserved for
// conditions that make further enrichment pointless: no usable adapter, an
// adapter that cannot be opened, or ctx being done.
func (e *Enricher) Enrich(ctx context.Context, addr net.HardwareAddr, preferredAdapter *int) (device.EnrichmentResult, error) {
	id, err := e.resolveAdapter(addr, preferredAdapter)
	if err != nil {
		return device.EnrichmentResult{}, err
	}

	adapter, err := e.radio.Open(id)
	if err != nil {
		return device.EnrichmentResult{}, fmt.Errorf("failed to open adapter hci%d: %w", id, err)
	}

	defer func() {
		if err := adapter.Close(); err != nil {
			log.Debug().Err(err).Int("DeviceID", id).Msg("enrich: failed to close adapter")
		}
	}()

	conn, err := e.resolveConnection(ctx, adapter, addr)
	if err != nil {
		if ctx.Err() != nil {
			return device.EnrichmentResult{}, ctx.Err()
		}

		log.Debug().
			Err(err).
			Stringer("Addr", addr).
			Int("DeviceID", id).
			Msg("enrich: cannot connect to device")

		return device.EnrichmentResult{Success: false}, nil
	}

	res := e.queryIdentity(ctx, adapter, addr, conn)

	if conn.owned {
		e.teardown(ctx, adapter, addr, conn)
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	return res, nil
}

func (e *Enricher) resolveAdapter(addr net.HardwareAddr, preferred *int) (int, error) {
	if preferred != nil && *preferred >= 0 {
		return *preferred, nil
	}

	if id, ok := e.radio.ConnectedAdapter(addr); ok {
		log.Trace().Stringer("Addr", addr).Int("DeviceID", id).Msg("enrich: using adapter already connected to device")
		return id, nil
	}

	id, err := e.radio.Route(addr)
	if err != nil {
		return -1, fmt.Errorf("%w: %s: %w", ErrNoAdapter, addr, err)
	}

	if id < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNoAdapter, addr)
	}

	return id, nil
}

func (e *Enricher) resolveConnection(ctx context.Context, adapter Adapter, addr net.HardwareAddr) (connection, error) {
	if handle, ok := adapter.Connection(addr); ok {
		log.Trace().Stringer("Addr", addr).Uint16("Handle", handle).Msg("enrich: reusing existing connection")
		return connection{handle: handle}, nil
	}

	handle, err := adapter.Connect(ctx, addr, e.opts.ConnectTimeout)
	if err != nil {
		return connection{}, err
	}

	conn := connection{handle: handle, owned: true}

	if err := sleep(ctx, e.opts.ConnectSettle); err != nil {
		e.teardown(ctx, adapter, addr, conn)
		return connection{}, err
	}

	return conn, nil
}

// queryIdentity is best-effort: a failed read leaves its fields absent.
func (e *Enricher) queryIdentity(ctx context.Context, adapter Adapter, addr net.HardwareAddr, conn connection) device.EnrichmentResult {
	res := device.EnrichmentResult{Success: true}

	if e.vendors != nil {
		if name, ok := e.vendors.Lookup(addr); ok {
			res.CompanyName = device.NonEmpty(name)
		}
	}

	name, err := adapter.ReadRemoteName(ctx, addr, e.opts.NameTimeout)
	if err != nil {
		log.Debug().Err(err).Stringer("Addr", addr).Msg("enrich: remote name unavailable")
	} else {
		res.Name = device.NonEmpty(name)
	}

	version, err := adapter.ReadRemoteVersion(ctx, conn.handle, e.opts.VersionTimeout)
	if err != nil {
		log.Debug().Err(err).Stringer("Addr", addr).Msg("enrich: remote version unavailable")
	} else {
		res.LMPVersion = device.Some(version.LMPVersion)
		res.LMPSubVersion = device.Some(version.LMPSubversion)
		res.ManufacturerName = device.Some(device.ManufacturerName(version.Manufacturer))
	}

	return res
}

// teardown releases a link we own. It runs even when ctx is done so the
// controller is not left with a dangling connection.
func (e *Enricher) teardown(ctx context.Context, adapter Adapter, addr net.HardwareAddr, conn connection) {
	ctx = context.WithoutCancel(ctx)

	_ = sleep(ctx, e.opts.DisconnectSettle)

	if err := adapter.Disconnect(ctx, conn.handle, e.opts.DisconnectTimeout); err != nil {
		log.Debug().Err(err).Stringer("Addr", addr).Uint16("Handle", conn.handle).Msg("enrich: disconnect failed")
		return
	}

	log.Trace().Stringer("Addr", addr).Uint16("Handle", conn.handle).Msg("enrich: disconnected")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
