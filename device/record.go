package device

import (
	"fmt"
	"strings"
	"time"
)

// Record is the persisted state of one physical device, keyed by Address.
type Record struct {
	Address          string
	Name             Field[string]
	CompanyName      Field[string]
	DeviceType       Field[string]
	LMPVersion       Field[uint8]
	LMPSubVersion    Field[uint16]
	ManufacturerName Field[string]

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply copies every set field of d onto r.
func (r *Record) Apply(d Delta) {
	if d.Name.Set {
		r.Name = d.Name
	}
	if d.CompanyName.Set {
		r.CompanyName = d.CompanyName
	}
	if d.DeviceType.Set {
		r.DeviceType = d.DeviceType
	}
	if d.LMPVersion.Set {
		r.LMPVersion = d.LMPVersion
	}
	if d.LMPSubVersion.Set {
		r.LMPSubVersion = d.LMPSubVersion
	}
	if d.ManufacturerName.Set {
		r.ManufacturerName = d.ManufacturerName
	}
}

func (r Record) String() string {
	return fmt.Sprintf("Record[Addr=%v,Name=%v,Company=%v,Type=%v,LMPVersion=%v,LMPSubVersion=%v,Manufacturer=%v]",
		r.Address, r.Name, r.CompanyName, r.DeviceType, r.LMPVersion, r.LMPSubVersion, r.ManufacturerName)
}

// Delta is a field-level change set for an existing record. Only set fields
// are written.
type Delta struct {
	Name             Field[string]
	CompanyName      Field[string]
	DeviceType       Field[string]
	LMPVersion       Field[uint8]
	LMPSubVersion    Field[uint16]
	ManufacturerName Field[string]
}

func (d Delta) Empty() bool {
	return !d.Name.Set && !d.CompanyName.Set && !d.DeviceType.Set &&
		!d.LMPVersion.Set && !d.LMPSubVersion.Set && !d.ManufacturerName.Set
}

func (d Delta) String() string {
	var fields []string

	if d.Name.Set {
		fields = append(fields, fmt.Sprintf("Name=%q", d.Name.Value))
	}
	if d.CompanyName.Set {
		fields = append(fields, fmt.Sprintf("Company=%q", d.CompanyName.Value))
	}
	if d.DeviceType.Set {
		fields = append(fields, fmt.Sprintf("Type=%q", d.DeviceType.Value))
	}
	if d.LMPVersion.Set {
		fields = append(fields, fmt.Sprintf("LMPVersion=%d", d.LMPVersion.Value))
	}
	if d.LMPSubVersion.Set {
		fields = append(fields, fmt.Sprintf("LMPSubVersion=0x%04x", d.LMPSubVersion.Value))
	}
	if d.ManufacturerName.Set {
		fields = append(fields, fmt.Sprintf("Manufacturer=%q", d.ManufacturerName.Value))
	}

	return "Delta[" + strings.Join(fields, ",") + "]"
}

// EnrichmentResult is what a single connect-and-query round produced for an
// address. Success is false only when no connection could be obtained.
type EnrichmentResult struct {
	Success          bool
	Name             Field[string]
	CompanyName      Field[string]
	LMPVersion       Field[uint8]
	LMPSubVersion    Field[uint16]
	ManufacturerName Field[string]
}

func (r EnrichmentResult) String() string {
	if !r.Success {
		return "result:failure"
	}

	return fmt.Sprintf("result:success(Name=%v,Company=%v,LMPVersion=%v,LMPSubVersion=%v,Manufacturer=%v)",
		r.Name, r.CompanyName, r.LMPVersion, r.LMPSubVersion, r.ManufacturerName)
}

var lmpVersions = []string{
	"1.0b", "1.1", "1.2", "2.0", "2.1", "3.0", "4.0", "4.1", "4.2",
	"5.0", "5.1", "5.2", "5.3", "5.4", "6.0",
}

// LMPVersionName maps an LMP version number to the core specification
// release it corresponds to.
func LMPVersionName(v uint8) string {
	if int(v) < len(lmpVersions) {
		return lmpVersions[v]
	}

	return fmt.Sprintf("unknown (0x%02x)", v)
}
