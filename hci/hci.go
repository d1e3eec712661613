package hci

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"unsafe"

	pkgerrors "github.com/pkg/errors"
	"github.com/robertof/go-btinfo/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

var (
	ErrNoAdapter     = errors.New("no bluetooth adapter available")
	ErrSocket        = errors.New("hci socket failure")
	ErrTimeout       = errors.New("hci request timed out")
	ErrCommandStatus = errors.New("hci command rejected")
)

// ioctl requests, see include/net/bluetooth/hci_sock.h
const (
	ioctlGetDevList  = 0x800448d2
	ioctlGetDevInfo  = 0x800448d3
	ioctlGetConnList = 0x800448d4
	ioctlGetConnInfo = 0x800448d5
	ioctlInquiry     = 0x800448f0
)

const (
	maxDevices     = 16
	devInfoSize    = 92
	devFlagUp      = 1 << 0
	scoPacketTypes = 0x0020 | 0x0040 | 0x0080
)

// AdapterInfo describes a local controller as reported by the kernel.
type AdapterInfo struct {
	ID         int
	Name       string
	Addr       net.HardwareAddr
	Up         bool
	PacketType uint16
}

func (a AdapterInfo) String() string {
	return fmt.Sprintf("%s (hci%d, %s)", a.Name, a.ID, a.Addr)
}

// Host provides access to the Bluetooth controllers of this machine.
type Host struct {
	connParams ConnParams
}

func NewHost(connParams ConnParams) *Host {
	if connParams == "" {
		connParams = ConnParamsDefault
	}

	return &Host{connParams: connParams}
}

func openRawSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return -1, pkgerrors.Wrapf(ErrSocket, "socket: %v", err)
	}

	return fd, nil
}

func ioctl(fd int, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}

	return nil
}

// Adapters lists every controller known to the kernel, up or not.
func (h *Host) Adapters() ([]AdapterInfo, error) {
	fd, err := openRawSocket()
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	buf := make([]byte, 4+maxDevices*8)
	binary.LittleEndian.PutUint16(buf, maxDevices)

	if err := ioctl(fd, ioctlGetDevList, buf); err != nil {
		return nil, pkgerrors.Wrapf(ErrSocket, "get device list: %v", err)
	}

	num := int(binary.LittleEndian.Uint16(buf))
	adapters := make([]AdapterInfo, 0, num)

	for i := 0; i < num && i < maxDevices; i++ {
		id := int(binary.LittleEndian.Uint16(buf[4+i*8:]))

		info, err := adapterInfo(fd, id)
		if err != nil {
			log.Debug().Err(err).Int("DeviceID", id).Msg("hci: skipping adapter without device info")
			continue
		}

		adapters = append(adapters, info)
	}

	return adapters, nil
}

func adapterInfo(fd int, id int) (AdapterInfo, error) {
	buf := make([]byte, devInfoSize)
	binary.LittleEndian.PutUint16(buf, uint16(id))

	if err := ioctl(fd, ioctlGetDevInfo, buf); err != nil {
		return AdapterInfo{}, pkgerrors.Wrapf(ErrSocket, "get device info for hci%d: %v", id, err)
	}

	return AdapterInfo{
		ID:         id,
		Name:       string(bytes.TrimRight(buf[2:10], "\x00")),
		Addr:       toHardwareAddr(buf[10:16]),
		Up:         binary.LittleEndian.Uint32(buf[16:])&devFlagUp != 0,
		PacketType: uint16(binary.LittleEndian.Uint32(buf[32:])),
	}, nil
}

// Adapter returns the info of a single controller.
func (h *Host) Adapter(id int) (AdapterInfo, error) {
	fd, err := openRawSocket()
	if err != nil {
		return AdapterInfo{}, err
	}
	defer unix.Close(fd)

	return adapterInfo(fd, id)
}

// Route picks the first adapter that is up and whose own address differs
// from addr. A nil addr accepts any adapter that is up.
func (h *Host) Route(addr net.HardwareAddr) (int, error) {
	adapters, err := h.Adapters()
	if err != nil {
		return -1, err
	}

	for _, a := range adapters {
		if !a.Up || bytes.Equal(a.Addr, addr) {
			continue
		}

		return a.ID, nil
	}

	return -1, ErrNoAdapter
}

// ConnectedAdapter finds an adapter that is up and holds an active link to
// addr.
func (h *Host) ConnectedAdapter(addr net.HardwareAddr) (int, bool) {
	adapters, err := h.Adapters()
	if err != nil {
		log.Debug().Err(err).Msg("hci: cannot enumerate adapters")
		return -1, false
	}

	for _, a := range adapters {
		if !a.Up {
			continue
		}

		conns, err := h.connections(a.ID)
		if err != nil {
			log.Debug().Err(err).Int("DeviceID", a.ID).Msg("hci: cannot list connections")
			continue
		}

		for _, c := range conns {
			if bytes.Equal(c.Addr, addr) {
				return a.ID, true
			}
		}
	}

	return -1, false
}

// Open binds a raw HCI socket to adapter id.
func (h *Host) Open(id int) (*Adapter, error) {
	info, err := h.Adapter(id)
	if err != nil {
		return nil, err
	}

	if !info.Up {
		return nil, pkgerrors.Wrapf(ErrNoAdapter, "hci%d is down", id)
	}

	s, err := openSocket(id)
	if err != nil {
		return nil, err
	}

	log.Trace().Stringer("Adapter", info).Msg("hci: adapter opened")

	return &Adapter{
		info:       info,
		sock:       s,
		connParams: h.connParams,
	}, nil
}

// bdaddr_t is stored least significant byte first.
func toHardwareAddr(b []byte) net.HardwareAddr {
	return utils.Reverse(net.HardwareAddr(b[:6]))
}

func toBDAddr(addr net.HardwareAddr) [6]byte {
	var b [6]byte

	copy(b[:], utils.Reverse(addr))

	return b
}
