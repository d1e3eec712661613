package oui

import (
	"net"

	ieee "github.com/endobit/oui"
)

type Lookup interface {
	Lookup(addr net.HardwareAddr) (string, bool)
}

// Chain asks each lookup in turn and returns the first non-empty vendor.
type Chain []Lookup

func (c Chain) Lookup(addr net.HardwareAddr) (string, bool) {
	for _, l := range c {
		if name, ok := l.Lookup(addr); ok && name != "" {
			return name, true
		}
	}

	return "", false
}

// IEEE resolves vendors from the IEEE registry compiled into the binary.
// It serves hosts that ship no hwdb source files.
type IEEE struct{}

func (IEEE) Lookup(addr net.HardwareAddr) (string, bool) {
	if len(addr) < 3 {
		return "", false
	}

	name := ieee.Vendor(addr.String())

	return name, name != ""
}

// NewDefault looks vendors up in the udev hwdb under dirs first and falls
// back to the IEEE registry.
func NewDefault(dirs ...string) Chain {
	return Chain{NewHWDB(dirs...), IEEE{}}
}
