package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robertof/go-btinfo/device"
	"github.com/rs/zerolog/log"
)

type Action uint8

const (
	// first sighting, record inserted
	ActionInserted Action = iota
	// known device, changed fields written
	ActionUpdated
	// known device, nothing new learned
	ActionUnchanged
	// known device, enrichment failed, record left alone
	ActionSkipped
)

func (a Action) String() string {
	switch a {
	case ActionInserted:
		return "inserted"
	case ActionUpdated:
		return "updated"
	case ActionUnchanged:
		return "unchanged"
	case ActionSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

type Reader interface {
	Count(ctx context.Context) (int, error)
	LoadAll(ctx context.Context) ([]device.Record, error)
}

type Writer interface {
	Insert(ctx context.Context, rec *device.Record) error
	UpdatePartial(ctx context.Context, addr string, d device.Delta) (time.Time, error)
}

// Inventory mirrors the persisted records in memory and folds enrichment
// results into them. Merge is meant to be called from a single goroutine;
// Snapshot may be called concurrently.
type Inventory struct {
	store Writer

	mu      sync.RWMutex
	records map[string]*device.Record
}

func New(store Writer) *Inventory {
	return &Inventory{
		store:   store,
		records: make(map[string]*device.Record),
	}
}

// Load fills the mirror with every persisted record. Existing entries are
// replaced.
func (inv *Inventory) Load(ctx context.Context, r Reader) error {
	n, err := r.Count(ctx)
	if err != nil {
		return err
	}

	records, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}

	if len(records) != n {
		log.Warn().
			Int("Count", n).
			Int("Loaded", len(records)).
			Msg("record count changed while loading")
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.records = make(map[string]*device.Record, len(records))

	for i := range records {
		rec := records[i]
		inv.records[rec.Address] = &rec
	}

	log.Info().Int("Records", len(inv.records)).Msg("Loaded known devices")

	return nil
}

func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	return len(inv.records)
}

// Get returns a copy of the record for addr.
func (inv *Inventory) Get(addr string) (device.Record, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	rec, ok := inv.records[addr]
	if !ok {
		return device.Record{}, false
	}

	return *rec, true
}

// Snapshot returns copies of all records.
func (inv *Inventory) Snapshot() []device.Record {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]device.Record, 0, len(inv.records))
	for _, rec := range inv.records {
		out = append(out, *rec)
	}

	return out
}

// Merge folds one enrichment result for addr into the inventory. A new
// address is always inserted, with whatever the result carries. A known
// address is only touched when enrichment succeeded and produced at least
// one field that differs from what is stored. The mirror is updated only
// after the store accepted the write.
func (inv *Inventory) Merge(ctx context.Context, addr string, deviceType device.Field[string], res device.EnrichmentResult) (Action, device.Record, error) {
	inv.mu.RLock()
	cur, known := inv.records[addr]
	inv.mu.RUnlock()

	if !known {
		return inv.insert(ctx, addr, deviceType, res)
	}

	if !res.Success {
		return ActionSkipped, *cur, nil
	}

	d := delta(*cur, deviceType, res)
	if d.Empty() {
		return ActionUnchanged, *cur, nil
	}

	updatedAt, err := inv.store.UpdatePartial(ctx, addr, d)
	if err != nil {
		return ActionUpdated, *cur, fmt.Errorf("failed to update %s: %w", addr, err)
	}

	log.Debug().Str("Addr", addr).Stringer("Delta", d).Msg("Record updated")

	inv.mu.Lock()
	defer inv.mu.Unlock()

	cur.Apply(d)
	cur.UpdatedAt = updatedAt

	return ActionUpdated, *cur, nil
}

func (inv *Inventory) insert(ctx context.Context, addr string, deviceType device.Field[string], res device.EnrichmentResult) (Action, device.Record, error) {
	rec := &device.Record{
		Address:    addr,
		DeviceType: nonEmpty(deviceType),
	}

	if res.Success {
		rec.Name = nonEmpty(res.Name)
		rec.CompanyName = nonEmpty(res.CompanyName)
		rec.LMPVersion = res.LMPVersion
		rec.LMPSubVersion = res.LMPSubVersion
		rec.ManufacturerName = nonEmpty(res.ManufacturerName)
	}

	if err := inv.store.Insert(ctx, rec); err != nil {
		return ActionInserted, *rec, fmt.Errorf("failed to insert %s: %w", addr, err)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.records[addr] = rec

	return ActionInserted, *rec, nil
}

// delta selects the fields of the result that carry new information. String
// fields count only when non-empty.
func delta(cur device.Record, deviceType device.Field[string], res device.EnrichmentResult) device.Delta {
	var d device.Delta

	if f := nonEmpty(res.Name); f.Differs(cur.Name) {
		d.Name = f
	}
	if f := nonEmpty(res.CompanyName); f.Differs(cur.CompanyName) {
		d.CompanyName = f
	}
	if f := nonEmpty(deviceType); f.Differs(cur.DeviceType) {
		d.DeviceType = f
	}
	if res.LMPVersion.Differs(cur.LMPVersion) {
		d.LMPVersion = res.LMPVersion
	}
	if res.LMPSubVersion.Differs(cur.LMPSubVersion) {
		d.LMPSubVersion = res.LMPSubVersion
	}
	if f := nonEmpty(res.ManufacturerName); f.Differs(cur.ManufacturerName) {
		d.ManufacturerName = f
	}

	return d
}

func nonEmpty(f device.Field[string]) device.Field[string] {
	if !f.Set {
		return f
	}

	return device.NonEmpty(f.Value)
}
