package hci

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type ConnParams string

const (
	ConnParamsDefault      ConnParams = "default"
	ConnParamsNoRoleSwitch ConnParams = "no-role-switch"
)

// *flag.Value
func (c *ConnParams) String() string {
	return string(*c)
}

func (c *ConnParams) Set(v string) error {
	if v == "" {
		*c = ConnParamsDefault
		return nil
	}

	allParams := []ConnParams{ConnParamsDefault, ConnParamsNoRoleSwitch}
	p := ConnParams(v)

	if !slices.Contains(allParams, p) {
		return fmt.Errorf("unknown connection param %v (must be one of %v)", p, allParams)
	}

	*c = p
	return nil
}

// createConnection fills the Create Connection parameters for bdaddr. SCO
// packet types are never requested on an ACL link.
func (c ConnParams) createConnection(bdaddr [6]byte, pktType uint16) *createConnection {
	p := &createConnection{
		BDADDR:                 bdaddr,
		PacketType:             pktType &^ scoPacketTypes,
		PageScanRepetitionMode: 0x02,   // R2
		Reserved:               0x00,   //
		ClockOffset:            0x0000, // unknown
		AllowRoleSwitch:        0x01,   // the remote may become central
	}

	switch c {
	case ConnParamsDefault:
		break
	case ConnParamsNoRoleSwitch:
		p.AllowRoleSwitch = 0x00
	}

	return p
}
