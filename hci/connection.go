package hci

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/go-ble/ble/linux/hci/evt"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

var (
	successfulConnectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btinfo_hci_successful_connections_total",
	})
	failedConnectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btinfo_hci_failed_connections_total",
	})
	reusedConnectionsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btinfo_hci_reused_connections_total",
	})
	disconnectsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btinfo_hci_disconnections_total",
	})
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		successfulConnectionsCounter,
		failedConnectionsCounter,
		reusedConnectionsCounter,
		disconnectsCounter,
	)
}

const (
	aclLink           = 0x01
	connInfoSize      = 16
	maxConnections    = 10
	connListReqHeader = 4
	connInfoReqHeader = 8

	// Remote User Terminated Connection
	ReasonRemoteUserTerminated = 0x13
)

type Connection struct {
	Handle   uint16
	Addr     net.HardwareAddr
	LinkType uint8
	Outgoing bool
}

// Adapter is an open raw HCI socket bound to one controller. It is not safe
// for concurrent use: every request reprograms the socket filter.
type Adapter struct {
	info       AdapterInfo
	sock       *socket
	connParams ConnParams
}

func (a *Adapter) Info() AdapterInfo {
	return a.info
}

func (a *Adapter) Close() error {
	log.Trace().Int("DeviceID", a.info.ID).Msg("hci: adapter closed")

	return a.sock.close()
}

func (h *Host) connections(id int) ([]Connection, error) {
	fd, err := openRawSocket()
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	buf := make([]byte, connListReqHeader+maxConnections*connInfoSize)
	binary.LittleEndian.PutUint16(buf[0:], uint16(id))
	binary.LittleEndian.PutUint16(buf[2:], maxConnections)

	if err := ioctl(fd, ioctlGetConnList, buf); err != nil {
		return nil, pkgerrors.Wrapf(ErrSocket, "get connection list of hci%d: %v", id, err)
	}

	num := int(binary.LittleEndian.Uint16(buf[2:]))
	conns := make([]Connection, 0, num)

	for i := 0; i < num && i < maxConnections; i++ {
		info := buf[connListReqHeader+i*connInfoSize:]

		conns = append(conns, Connection{
			Handle:   binary.LittleEndian.Uint16(info[0:]),
			Addr:     toHardwareAddr(info[2:8]),
			LinkType: info[8],
			Outgoing: info[9] != 0,
		})
	}

	return conns, nil
}

// Connection returns the handle of an existing ACL link to addr on this
// adapter, if there is one.
func (a *Adapter) Connection(addr net.HardwareAddr) (uint16, bool) {
	bdaddr := toBDAddr(addr)

	buf := make([]byte, connInfoReqHeader+connInfoSize)
	copy(buf, bdaddr[:])
	buf[6] = aclLink

	if err := ioctl(a.sock.fd, ioctlGetConnInfo, buf); err != nil {
		log.Trace().Err(err).Stringer("Addr", addr).Msg("hci: no existing connection")
		return 0, false
	}

	reusedConnectionsCounter.Inc()

	return binary.LittleEndian.Uint16(buf[connInfoReqHeader:]), true
}

// Connect establishes an ACL link to addr and returns its handle.
func (a *Adapter) Connect(ctx context.Context, addr net.HardwareAddr, timeout time.Duration) (uint16, error) {
	bdaddr := toBDAddr(addr)

	params, err := a.sock.request(
		ctx,
		a.connParams.createConnection(bdaddr, a.info.PacketType),
		connectionCompleteCode,
		timeout,
		func(p []byte) bool {
			return len(p) >= 11 && connectionComplete(p).BDADDR() == bdaddr
		},
	)

	if err != nil {
		failedConnectionsCounter.Inc()
		return 0, pkgerrors.Wrapf(err, "connect to %s", addr)
	}

	res := connectionComplete(params)
	if res.Status() != 0 {
		failedConnectionsCounter.Inc()
		return 0, pkgerrors.Wrapf(ErrCommandStatus, "connect to %s: status 0x%02x", addr, res.Status())
	}

	successfulConnectionsCounter.Inc()
	log.Debug().Stringer("Addr", addr).Uint16("Handle", res.ConnectionHandle()).Msg("hci: connection established")

	return res.ConnectionHandle(), nil
}

// Disconnect terminates the link identified by handle and waits for the
// controller to confirm it.
func (a *Adapter) Disconnect(ctx context.Context, handle uint16, timeout time.Duration) error {
	params, err := a.sock.request(
		ctx,
		&cmd.Disconnect{
			ConnectionHandle: handle,
			Reason:           ReasonRemoteUserTerminated,
		},
		evt.DisconnectionCompleteCode,
		timeout,
		func(p []byte) bool {
			return len(p) >= 4 && evt.DisconnectionComplete(p).ConnectionHandle()&0x0fff == handle
		},
	)

	if err != nil {
		return pkgerrors.Wrapf(err, "disconnect handle %d", handle)
	}

	if status := evt.DisconnectionComplete(params).Status(); status != 0 {
		return pkgerrors.Wrapf(ErrCommandStatus, "disconnect handle %d: status 0x%02x", handle, status)
	}

	disconnectsCounter.Inc()

	return nil
}
