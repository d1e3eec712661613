package hci

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-ble/ble/linux/hci/cmd"
	"github.com/go-ble/ble/linux/hci/evt"
	pkgerrors "github.com/pkg/errors"
)

type RemoteVersion struct {
	LMPVersion    uint8
	Manufacturer  uint16
	LMPSubversion uint16
}

func (v RemoteVersion) String() string {
	return fmt.Sprintf("RemoteVersion[LMPVersion=%d,Manufacturer=%d,LMPSubversion=0x%04x]",
		v.LMPVersion, v.Manufacturer, v.LMPSubversion)
}

// ReadRemoteName asks the remote device for its user-friendly name. It does
// not need an existing connection.
func (a *Adapter) ReadRemoteName(ctx context.Context, addr net.HardwareAddr, timeout time.Duration) (string, error) {
	bdaddr := toBDAddr(addr)

	params, err := a.sock.request(
		ctx,
		&remoteNameRequest{
			BDADDR:                 bdaddr,
			PageScanRepetitionMode: 0x02,
		},
		remoteNameRequestCompleteCode,
		timeout,
		func(p []byte) bool {
			return len(p) >= 7 && remoteNameRequestComplete(p).BDADDR() == bdaddr
		},
	)

	if err != nil {
		return "", pkgerrors.Wrapf(err, "read remote name of %s", addr)
	}

	res := remoteNameRequestComplete(params)
	if res.Status() != 0 {
		return "", pkgerrors.Wrapf(ErrCommandStatus, "read remote name of %s: status 0x%02x", addr, res.Status())
	}

	return string(res.RemoteName()), nil
}

// ReadRemoteVersion reads the LMP version information over an existing link.
func (a *Adapter) ReadRemoteVersion(ctx context.Context, handle uint16, timeout time.Duration) (RemoteVersion, error) {
	params, err := a.sock.request(
		ctx,
		&cmd.ReadRemoteVersionInformation{ConnectionHandle: handle},
		evt.ReadRemoteVersionInformationCompleteCode,
		timeout,
		func(p []byte) bool {
			return len(p) >= 8 && evt.ReadRemoteVersionInformationComplete(p).ConnectionHandle()&0x0fff == handle
		},
	)

	if err != nil {
		return RemoteVersion{}, pkgerrors.Wrapf(err, "read remote version of handle %d", handle)
	}

	res := evt.ReadRemoteVersionInformationComplete(params)
	if res.Status() != 0 {
		return RemoteVersion{}, pkgerrors.Wrapf(ErrCommandStatus, "read remote version of handle %d: status 0x%02x", handle, res.Status())
	}

	return RemoteVersion{
		LMPVersion:    res.Version(),
		Manufacturer:  res.ManufacturerName(),
		LMPSubversion: res.Subversion(),
	}, nil
}
