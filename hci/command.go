package hci

import (
	"encoding/binary"
	"io"
)

// createConnection implements Create Connection (0x01|0x0005) [Vol 4, Part E, 7.1.5]
type createConnection struct {
	BDADDR                 [6]byte
	PacketType             uint16
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
	AllowRoleSwitch        uint8
}

func (c *createConnection) String() string { return "Create Connection (0x01|0x0005)" }
func (c *createConnection) OpCode() int { return 0x01<<10 | 0x0005 }
func (c *createConnection) Len() int { return 13 }

func (c *createConnection) Marshal(b []byte) error {
	if len(b) < c.Len() {
		return io.ErrShortBuffer
	}

	copy(b, c.BDADDR[:])
	binary.LittleEndian.PutUint16(b[6:], c.PacketType)
	b[8] = c.PageScanRepetitionMode
	b[9] = c.Reserved
	binary.LittleEndian.PutUint16(b[10:], c.ClockOffset)
	b[12] = c.AllowRoleSwitch

	return nil
}

// remoteNameRequest implements Remote Name Request (0x01|0x0019) [Vol 4, Part E, 7.1.19]
type remoteNameRequest struct {
	BDADDR                 [6]byte
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
}

func (c *remoteNameRequest) String() string { return "Remote Name Request (0x01|0x0019)" }
func (c *remoteNameRequest) OpCode() int { return 0x01<<10 | 0x0019 }
func (c *remoteNameRequest) Len() int { return 10 }

func (c *remoteNameRequest) Marshal(b []byte) error {
	if len(b) < c.Len() {
		return io.ErrShortBuffer
	}

	copy(b, c.BDADDR[:])
	b[6] = c.PageScanRepetitionMode
	b[7] = c.Reserved
	binary.LittleEndian.PutUint16(b[8:], c.ClockOffset)

	return nil
}

const (
	connectionCompleteCode        = 0x03
	remoteNameRequestCompleteCode = 0x07
)

// connectionComplete implements Connection Complete (0x03) [Vol 4, Part E, 7.7.3]
type connectionComplete []byte

func (r connectionComplete) Status() uint8 { return r[0] }
func (r connectionComplete) ConnectionHandle() uint16 { return binary.LittleEndian.Uint16(r[1:]) }
func (r connectionComplete) BDADDR() [6]byte { return [6]byte(r[3:9]) }
func (r connectionComplete) LinkType() uint8 { return r[9] }

// remoteNameRequestComplete implements Remote Name Request Complete (0x07) [Vol 4, Part E, 7.7.7]
type remoteNameRequestComplete []byte

func (r remoteNameRequestComplete) Status() uint8 { return r[0] }
func (r remoteNameRequestComplete) BDADDR() [6]byte { return [6]byte(r[1:7]) }
func (r remoteNameRequestComplete) RemoteName() []byte {
	name := r[7:]
	for i, c := range name {
		if c == 0 {
			return name[:i]
		}
	}

	return name
}
