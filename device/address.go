package device

import (
	"fmt"
	"net"
	"strings"
)

// FormatAddress renders a hardware address the way it is keyed in the store:
// upper-case, colon separated.
func FormatAddress(addr net.HardwareAddr) string {
	return strings.ToUpper(addr.String())
}

func ParseAddress(s string) (net.HardwareAddr, error) {
	addr, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("invalid addr: %w", err)
	}

	if len(addr) != 6 {
		return nil, fmt.Errorf("invalid addr %q: want 6 bytes, got %d", s, len(addr))
	}

	return addr, nil
}

// OUI returns the organizationally unique identifier (top three bytes) as
// six upper-case hex digits.
func OUI(addr net.HardwareAddr) string {
	if len(addr) < 3 {
		return ""
	}

	return fmt.Sprintf("%02X%02X%02X", addr[0], addr[1], addr[2])
}
