package enrich

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/robertof/go-btinfo/device"
	"github.com/robertof/go-btinfo/hci"
)

var testAddr = net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

type fakeRadio struct {
	connected map[string]int
	route     int
	routeErr  error
	openErr   error
	adapter   *fakeAdapter

	opened      []int
	routeCalled bool
}

func (r *fakeRadio) ConnectedAdapter(addr net.HardwareAddr) (int, bool) {
	id, ok := r.connected[addr.String()]
	return id, ok
}

func (r *fakeRadio) Route(addr net.HardwareAddr) (int, error) {
	r.routeCalled = true
	return r.route, r.routeErr
}

func (r *fakeRadio) Open(id int) (Adapter, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}

	r.opened = append(r.opened, id)
	r.adapter.open++

	return r.adapter, nil
}

type fakeAdapter struct {
	existing   map[string]uint16
	handle     uint16
	connectErr error
	name       string
	nameErr    error
	version    hci.RemoteVersion
	versionErr error
	discErr    error

	open         int
	connects     int
	disconnected []uint16
}

func (a *fakeAdapter) Connection(addr net.HardwareAddr) (uint16, bool) {
	h, ok := a.existing[addr.String()]
	return h, ok
}

func (a *fakeAdapter) Connect(ctx context.Context, addr net.HardwareAddr, timeout time.Duration) (uint16, error) {
	a.connects++
	return a.handle, a.connectErr
}

func (a *fakeAdapter) ReadRemoteName(ctx context.Context, addr net.HardwareAddr, timeout time.Duration) (string, error) {
	return a.name, a.nameErr
}

func (a *fakeAdapter) ReadRemoteVersion(ctx context.Context, handle uint16, timeout time.Duration) (hci.RemoteVersion, error) {
	return a.version, a.versionErr
}

func (a *fakeAdapter) Disconnect(ctx context.Context, handle uint16, timeout time.Duration) error {
	a.disconnected = append(a.disconnected, handle)
	return a.discErr
}

func (a *fakeAdapter) Close() error {
	a.open--
	return nil
}

type fakeVendors map[string]string

func (v fakeVendors) Lookup(addr net.HardwareAddr) (string, bool) {
	name, ok := v[device.OUI(addr)]
	return name, ok
}

func testOptions() Options {
	return Options{}
}

func TestEnrich_ExistingConnection(t *testing.T) {
	adapter := &fakeAdapter{
		existing: map[string]uint16{testAddr.String(): 7},
		name:     "Foo",
		version:  hci.RemoteVersion{LMPVersion: 9, Manufacturer: 29, LMPSubversion: 0x4107},
	}
	radio := &fakeRadio{adapter: adapter}

	e := New(radio, fakeVendors{"AABBCC": "Acme"}, testOptions())

	got, err := e.Enrich(context.Background(), testAddr, nil)
	if err != nil {
		t.Fatalf("Enrich() got error: %v", err)
	}

	want := device.EnrichmentResult{
		Success:          true,
		Name:             device.Some("Foo"),
		CompanyName:      device.Some("Acme"),
		LMPVersion:       device.Some[uint8](9),
		LMPSubVersion:    device.Some[uint16](0x4107),
		ManufacturerName: device.Some("Qualcomm"),
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enrich(): got %+#v, wanted %+#v", got, want)
	}

	if adapter.connects != 0 {
		t.Fatalf("Enrich() created a connection although one existed")
	}

	if len(adapter.disconnected) != 0 {
		t.Fatalf("Enrich() tore down a connection it does not own: %v", adapter.disconnected)
	}

	if adapter.open != 0 {
		t.Fatalf("Enrich() leaked %d adapter handles", adapter.open)
	}
}

func TestEnrich_NewConnection(t *testing.T) {
	adapter := &fakeAdapter{
		handle:     12,
		nameErr:    hci.ErrTimeout,
		versionErr: hci.ErrTimeout,
	}
	radio := &fakeRadio{adapter: adapter, route: 1}

	e := New(radio, fakeVendors{}, testOptions())

	got, err := e.Enrich(context.Background(), testAddr, nil)
	if err != nil {
		t.Fatalf("Enrich() got error: %v", err)
	}

	if want := (device.EnrichmentResult{Success: true}); !reflect.DeepEqual(got, want) {
		t.Fatalf("Enrich(): got %+#v, wanted %+#v", got, want)
	}

	if !reflect.DeepEqual(adapter.disconnected, []uint16{12}) {
		t.Fatalf("Enrich(): disconnected %v, wanted [12]", adapter.disconnected)
	}

	if !reflect.DeepEqual(radio.opened, []int{1}) {
		t.Fatalf("Enrich(): opened %v, wanted [1]", radio.opened)
	}

	if adapter.open != 0 {
		t.Fatalf("Enrich() leaked %d adapter handles", adapter.open)
	}
}

func TestEnrich_ConnectFailure(t *testing.T) {
	adapter := &fakeAdapter{connectErr: hci.ErrTimeout}
	radio := &fakeRadio{adapter: adapter}

	e := New(radio, fakeVendors{"AABBCC": "Acme"}, testOptions())

	got, err := e.Enrich(context.Background(), testAddr, nil)
	if err != nil {
		t.Fatalf("Enrich() got error: %v", err)
	}

	if want := (device.EnrichmentResult{}); !reflect.DeepEqual(got, want) {
		t.Fatalf("Enrich(): got %+#v, wanted %+#v", got, want)
	}

	if len(adapter.disconnected) != 0 {
		t.Fatalf("Enrich() disconnected a link that was never created")
	}

	if adapter.open != 0 {
		t.Fatalf("Enrich() leaked %d adapter handles", adapter.open)
	}
}

func TestEnrich_ZeroVersionIsPresent(t *testing.T) {
	adapter := &fakeAdapter{
		existing: map[string]uint16{testAddr.String(): 1},
		version:  hci.RemoteVersion{LMPVersion: 0, Manufacturer: 0xffff, LMPSubversion: 0},
	}

	e := New(&fakeRadio{adapter: adapter}, nil, testOptions())

	got, err := e.Enrich(context.Background(), testAddr, nil)
	if err != nil {
		t.Fatalf("Enrich() got error: %v", err)
	}

	want := device.EnrichmentResult{
		Success:          true,
		LMPVersion:       device.Some[uint8](0),
		LMPSubVersion:    device.Some[uint16](0),
		ManufacturerName: device.Some("internal use"),
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enrich(): got %+#v, wanted %+#v", got, want)
	}
}

func TestEnrich_AdapterResolution(t *testing.T) {
	preferred := 3

	tests := []struct {
		name      string
		preferred *int
		connected map[string]int
		wantID    int
		wantRoute bool
	}{
		{"preferred", &preferred, map[string]int{testAddr.String(): 2}, 3, false},
		{"already connected", nil, map[string]int{testAddr.String(): 2}, 2, false},
		{"default route", nil, nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			radio := &fakeRadio{
				connected: tt.connected,
				adapter:   &fakeAdapter{versionErr: hci.ErrTimeout},
			}

			e := New(radio, nil, testOptions())

			if _, err := e.Enrich(context.Background(), testAddr, tt.preferred); err != nil {
				t.Fatalf("Enrich() got error: %v", err)
			}

			if !reflect.DeepEqual(radio.opened, []int{tt.wantID}) {
				t.Fatalf("Enrich(): opened %v, wanted [%d]", radio.opened, tt.wantID)
			}

			if radio.routeCalled != tt.wantRoute {
				t.Fatalf("Enrich(): route consulted = %v, wanted %v", radio.routeCalled, tt.wantRoute)
			}
		})
	}
}

func TestEnrich_NoAdapter(t *testing.T) {
	radio := &fakeRadio{adapter: &fakeAdapter{}, route: -1, routeErr: hci.ErrNoAdapter}

	e := New(radio, nil, testOptions())

	_, err := e.Enrich(context.Background(), testAddr, nil)
	if !errors.Is(err, ErrNoAdapter) || !errors.Is(err, hci.ErrNoAdapter) {
		t.Fatalf("Enrich(): got error %v, wanted ErrNoAdapter", err)
	}

	if len(radio.opened) != 0 {
		t.Fatalf("Enrich() opened adapters %v without a route", radio.opened)
	}
}

func TestEnrich_OpenFailure(t *testing.T) {
	radio := &fakeRadio{adapter: &fakeAdapter{}, openErr: hci.ErrSocket}

	e := New(radio, nil, testOptions())

	_, err := e.Enrich(context.Background(), testAddr, nil)
	if !errors.Is(err, hci.ErrSocket) {
		t.Fatalf("Enrich(): got error %v, wanted ErrSocket", err)
	}
}

func TestEnrich_Cancelled(t *testing.T) {
	adapter := &fakeAdapter{handle: 5}
	radio := &fakeRadio{adapter: adapter}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := testOptions()
	opts.ConnectSettle = time.Hour

	e := New(radio, nil, opts)

	if _, err := e.Enrich(ctx, testAddr, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Enrich(): got error %v, wanted context.Canceled", err)
	}

	if !reflect.DeepEqual(adapter.disconnected, []uint16{5}) {
		t.Fatalf("Enrich(): disconnected %v, wanted [5]", adapter.disconnected)
	}

	if adapter.open != 0 {
		t.Fatalf("Enrich() leaked %d adapter handles", adapter.open)
	}
}

func TestEnrich_ExistingConnectionReadsFail(t *testing.T) {
	adapter := &fakeAdapter{
		existing:   map[string]uint16{testAddr.String(): 7},
		nameErr:    hci.ErrTimeout,
		versionErr: hci.ErrCommandStatus,
	}
	radio := &fakeRadio{adapter: adapter}

	got, err := New(radio, nil, testOptions()).Enrich(context.Background(), testAddr, nil)
	if err != nil {
		t.Fatalf("Enrich() got error: %v", err)
	}

	want := device.EnrichmentResult{Success: true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enrich(): got %+#v, wanted %+#v", got, want)
	}

	if adapter.connects != 0 || len(adapter.disconnected) != 0 {
		t.Fatalf("Enrich() touched a link it does not own: connects=%d disconnected=%v",
			adapter.connects, adapter.disconnected)
	}

	if adapter.open != 0 {
		t.Fatalf("Enrich() leaked %d adapter handles", adapter.open)
	}
}

func TestEnrich_DisconnectFailure(t *testing.T) {
	adapter := &fakeAdapter{
		handle:  42,
		name:    "Foo",
		discErr: hci.ErrTimeout,
	}
	radio := &fakeRadio{adapter: adapter}

	got, err := New(radio, nil, testOptions()).Enrich(context.Background(), testAddr, nil)
	if err != nil {
		t.Fatalf("Enrich() got error: %v", err)
	}

	if !got.Success || got.Name != device.Some("Foo") {
		t.Fatalf("Enrich(): got %+#v, wanted a successful result named Foo", got)
	}

	if !reflect.DeepEqual(adapter.disconnected, []uint16{42}) {
		t.Fatalf("Enrich() disconnected %v, wanted [42]", adapter.disconnected)
	}

	if adapter.open != 0 {
		t.Fatalf("Enrich() leaked %d adapter handles", adapter.open)
	}
}
