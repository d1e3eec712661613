package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertof/go-btinfo/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "AA:BB:CC:DD:EE:FF"

var (
	createdAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	updatedAt = time.Date(2024, 5, 2, 11, 30, 0, 0, time.UTC)
)

type update struct {
	addr  string
	delta device.Delta
}

type fakeStore struct {
	records []device.Record

	inserts   []device.Record
	updates   []update
	insertErr error
	updateErr error
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	return len(s.records), nil
}

func (s *fakeStore) LoadAll(ctx context.Context) ([]device.Record, error) {
	return s.records, nil
}

func (s *fakeStore) Insert(ctx context.Context, rec *device.Record) error {
	if s.insertErr != nil {
		return s.insertErr
	}

	rec.CreatedAt = createdAt
	rec.UpdatedAt = createdAt
	s.inserts = append(s.inserts, *rec)

	return nil
}

func (s *fakeStore) UpdatePartial(ctx context.Context, addr string, d device.Delta) (time.Time, error) {
	if s.updateErr != nil {
		return time.Time{}, s.updateErr
	}

	s.updates = append(s.updates, update{addr, d})

	return updatedAt, nil
}

func (s *fakeStore) writes() int {
	return len(s.inserts) + len(s.updates)
}

func successResult() device.EnrichmentResult {
	return device.EnrichmentResult{
		Success:          true,
		Name:             device.Some("Foo"),
		CompanyName:      device.Some("Acme"),
		LMPVersion:       device.Some[uint8](9),
		LMPSubVersion:    device.Some[uint16](0x4107),
		ManufacturerName: device.Some("Qualcomm"),
	}
}

func TestMerge_Scenarios(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	inv := New(store)
	phone := device.Some("Smart phone")

	// A: first sighting with a successful enrichment.
	action, rec, err := inv.Merge(ctx, addr, phone, successResult())
	require.NoError(t, err)
	assert.Equal(t, ActionInserted, action)

	wantA := device.Record{
		Address:          addr,
		Name:             device.Some("Foo"),
		CompanyName:      device.Some("Acme"),
		DeviceType:       phone,
		LMPVersion:       device.Some[uint8](9),
		LMPSubVersion:    device.Some[uint16](0x4107),
		ManufacturerName: device.Some("Qualcomm"),
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	assert.Equal(t, wantA, rec)
	require.Len(t, store.inserts, 1)
	assert.Equal(t, wantA, store.inserts[0])

	// B: only the sub-version changed.
	res := successResult()
	res.LMPSubVersion = device.Some[uint16](0x4200)

	action, rec, err = inv.Merge(ctx, addr, phone, res)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)
	require.Len(t, store.updates, 1)
	assert.Equal(t, update{addr, device.Delta{LMPSubVersion: device.Some[uint16](0x4200)}}, store.updates[0])

	wantB := wantA
	wantB.LMPSubVersion = device.Some[uint16](0x4200)
	wantB.UpdatedAt = updatedAt
	assert.Equal(t, wantB, rec)

	// C: enrichment failed, nothing is written.
	action, rec, err = inv.Merge(ctx, addr, phone, device.EnrichmentResult{Success: false})
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, action)
	assert.Equal(t, 2, store.writes())
	assert.Equal(t, wantB, rec)

	got, ok := inv.Get(addr)
	require.True(t, ok)
	assert.Equal(t, wantB, got)
}

func TestMerge_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{records: []device.Record{{Address: addr}}}
	inv := New(store)
	require.NoError(t, inv.Load(ctx, store))

	action, _, err := inv.Merge(ctx, addr, device.Field[string]{}, successResult())
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)
	assert.Equal(t, 1, store.writes())

	action, _, err = inv.Merge(ctx, addr, device.Field[string]{}, successResult())
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, action)
	assert.Equal(t, 1, store.writes())
}

func TestMerge_NeverClearsFields(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	inv := New(store)

	_, _, err := inv.Merge(ctx, addr, device.Some("Laptop"), successResult())
	require.NoError(t, err)

	empty := device.EnrichmentResult{
		Success:          true,
		Name:             device.Some(""),
		CompanyName:      device.Field[string]{},
		ManufacturerName: device.Some(""),
	}

	action, rec, err := inv.Merge(ctx, addr, device.Some(""), empty)
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, action)
	assert.Empty(t, store.updates)
	assert.Equal(t, device.Some("Foo"), rec.Name)
	assert.Equal(t, device.Some("Acme"), rec.CompanyName)
	assert.Equal(t, device.Some("Laptop"), rec.DeviceType)
	assert.Equal(t, device.Some[uint8](9), rec.LMPVersion)
}

func TestMerge_ZeroVersionIsAChange(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	inv := New(store)

	_, _, err := inv.Merge(ctx, addr, device.Field[string]{}, successResult())
	require.NoError(t, err)

	res := successResult()
	res.LMPVersion = device.Some[uint8](0)

	action, _, err := inv.Merge(ctx, addr, device.Field[string]{}, res)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)
	require.Len(t, store.updates, 1)
	assert.Equal(t, device.Delta{LMPVersion: device.Some[uint8](0)}, store.updates[0].delta)
}

func TestMerge_DeviceTypeChange(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	inv := New(store)

	_, _, err := inv.Merge(ctx, addr, device.Some("Miscellaneous"), device.EnrichmentResult{})
	require.NoError(t, err)

	action, rec, err := inv.Merge(ctx, addr, device.Some("Headphones"), device.EnrichmentResult{Success: true})
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)
	assert.Equal(t, device.Some("Headphones"), rec.DeviceType)
}

func TestMerge_FailedFirstSighting(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	inv := New(store)

	res := successResult()
	res.Success = false

	action, rec, err := inv.Merge(ctx, addr, device.Some("Headphones"), res)
	require.NoError(t, err)
	assert.Equal(t, ActionInserted, action)

	want := device.Record{
		Address:    addr,
		DeviceType: device.Some("Headphones"),
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	assert.Equal(t, want, rec)

	action, _, err = inv.Merge(ctx, addr, device.Some("Headphones"), device.EnrichmentResult{})
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, action)
	assert.Len(t, store.inserts, 1)
}

func TestMerge_StoreFailureLeavesMirror(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	inv := New(store)

	_, _, err := inv.Merge(ctx, addr, device.Field[string]{}, successResult())
	require.NoError(t, err)

	store.updateErr = errors.New("disk full")

	res := successResult()
	res.Name = device.Some("Bar")

	_, _, err = inv.Merge(ctx, addr, device.Field[string]{}, res)
	require.Error(t, err)

	got, _ := inv.Get(addr)
	assert.Equal(t, device.Some("Foo"), got.Name)

	store.insertErr = errors.New("disk full")

	_, _, err = inv.Merge(ctx, "11:22:33:44:55:66", device.Field[string]{}, res)
	require.Error(t, err)
	assert.Equal(t, 1, inv.Len())
}

func TestLoadAndSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{records: []device.Record{
		{Address: addr, Name: device.Some("Foo")},
		{Address: "11:22:33:44:55:66"},
	}}
	inv := New(store)
	require.NoError(t, inv.Load(ctx, store))
	assert.Equal(t, 2, inv.Len())

	snap := inv.Snapshot()
	require.Len(t, snap, 2)

	for i := range snap {
		snap[i].Name = device.Some("changed")
	}

	got, ok := inv.Get(addr)
	require.True(t, ok)
	assert.Equal(t, device.Some("Foo"), got.Name)

	action, _, err := inv.Merge(ctx, "11:22:33:44:55:66", device.Field[string]{}, device.EnrichmentResult{})
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, action)
	assert.Equal(t, 0, store.writes())
}
