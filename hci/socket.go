package hci

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/go-ble/ble/linux/hci/evt"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	pktTypeCommand = 0x01
	pktTypeEvent   = 0x04

	// setsockopt(SOL_HCI) option, not exported by x/sys.
	optFilter = 2

	evtCommandComplete = 0x0e

	// upper bound of a single poll so cancellation is noticed.
	pollSlice = 100 * time.Millisecond
)

type command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

type socket struct {
	fd  int
	dev int
}

func openSocket(dev int) (*socket, error) {
	fd, err := openRawSocket()
	if err != nil {
		return nil, err
	}

	if err := unix.Bind(fd, &unix.SockaddrHCI{Dev: uint16(dev), Channel: unix.HCI_CHANNEL_RAW}); err != nil {
		unix.Close(fd)
		return nil, pkgerrors.Wrapf(ErrSocket, "bind hci%d: %v", dev, err)
	}

	return &socket{fd: fd, dev: dev}, nil
}

func (s *socket) close() error {
	return unix.Close(s.fd)
}

// setFilter restricts the socket to event packets carrying one of events,
// with command status/complete events limited to opcode.
func (s *socket) setFilter(opcode uint16, events ...uint8) error {
	var f [16]byte

	binary.LittleEndian.PutUint32(f[0:], 1<<pktTypeEvent)

	var mask [2]uint32
	for _, e := range events {
		mask[e>>5] |= 1 << (e & 31)
	}

	binary.LittleEndian.PutUint32(f[4:], mask[0])
	binary.LittleEndian.PutUint32(f[8:], mask[1])
	binary.LittleEndian.PutUint16(f[12:], opcode)

	if err := unix.SetsockoptString(s.fd, unix.SOL_HCI, optFilter, string(f[:])); err != nil {
		return pkgerrors.Wrapf(ErrSocket, "set filter: %v", err)
	}

	return nil
}

func (s *socket) send(c command) error {
	b := make([]byte, 4+c.Len())
	b[0] = pktTypeCommand
	binary.LittleEndian.PutUint16(b[1:], uint16(c.OpCode()))
	b[3] = byte(c.Len())

	if err := c.Marshal(b[4:]); err != nil {
		return pkgerrors.Wrap(err, "marshal command")
	}

	if _, err := unix.Write(s.fd, b); err != nil {
		return pkgerrors.Wrapf(ErrSocket, "write command 0x%04x: %v", c.OpCode(), err)
	}

	return nil
}

// readEvent waits until deadline for one event packet and returns its code
// and parameters.
func (s *socket) readEvent(ctx context.Context, deadline time.Time) (uint8, []byte, error) {
	buf := make([]byte, 260)

	for {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, nil, ErrTimeout
		}

		if remaining > pollSlice {
			remaining = pollSlice
		}

		fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}

		n, err := unix.Poll(fds, int(remaining.Milliseconds())+1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, nil, pkgerrors.Wrapf(ErrSocket, "poll: %v", err)
		}
		if n == 0 {
			continue
		}

		n, err = unix.Read(s.fd, buf)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return 0, nil, pkgerrors.Wrapf(ErrSocket, "read: %v", err)
		}

		if n < 3 || buf[0] != pktTypeEvent {
			continue
		}

		plen := int(buf[2])
		if 3+plen > n {
			continue
		}

		params := make([]byte, plen)
		copy(params, buf[3:3+plen])

		return buf[1], params, nil
	}
}

// request sends c and waits for the event code `event` whose parameters are
// accepted by match. A command status for c with a non-zero status aborts
// the request. When event is the command status itself, the status ends it.
func (s *socket) request(ctx context.Context, c command, event uint8, timeout time.Duration, match func([]byte) bool) ([]byte, error) {
	opcode := uint16(c.OpCode())

	if err := s.setFilter(opcode, evt.CommandStatusCode, evtCommandComplete, event); err != nil {
		return nil, err
	}

	if err := s.send(c); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)

	for {
		code, params, err := s.readEvent(ctx, deadline)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "waiting for event 0x%02x after command 0x%04x", event, opcode)
		}

		log.Trace().
			Int("DeviceID", s.dev).
			Uint8("Event", code).
			Hex("Params", params).
			Msg("hci: event received")

		switch code {
		case evt.CommandStatusCode:
			if len(params) < 4 {
				continue
			}

			status := evt.CommandStatus(params)
			if status.CommandOpcode() != opcode {
				continue
			}

			if status.Status() != 0 {
				return nil, pkgerrors.Wrapf(ErrCommandStatus, "command 0x%04x: status 0x%02x", opcode, status.Status())
			}

			if event == evt.CommandStatusCode {
				return params, nil
			}

		case event:
			if match == nil || match(params) {
				return params, nil
			}
		}
	}
}
