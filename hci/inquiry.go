package hci

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/robertof/go-btinfo/device"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	inquiryReqSize  = 10
	inquiryInfoSize = 14

	// inquiry length unit.
	InquiryUnit = 1280 * time.Millisecond
)

// general inquiry access code 0x9e8b33.
var giac = [3]byte{0x33, 0x8b, 0x9e}

type InquiryParams struct {
	// Duration in units of 1.28s (1-48).
	Length uint8
	// Maximum number of responses, 0 means unlimited (255).
	MaxResponses uint8
	Flags        InquiryFlags
}

func (p InquiryParams) String() string {
	return fmt.Sprintf("InquiryParams[Length=%v,MaxResponses=%d,Flags=%v]",
		time.Duration(p.Length)*InquiryUnit, p.MaxResponses, p.Flags)
}

type InquiryResult struct {
	Addr  net.HardwareAddr
	Class device.Class
}

func (r InquiryResult) String() string {
	return fmt.Sprintf("%s (class %v)", r.Addr, r.Class)
}

// Inquiry runs a BR/EDR inquiry on adapter id and returns the responding
// devices in the order the controller reported them. The call blocks for
// the whole inquiry length; ctx is only checked before it starts.
func (h *Host) Inquiry(ctx context.Context, id int, params InquiryParams) ([]InquiryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fd, err := openRawSocket()
	if err != nil {
		return nil, err
	}
	defer unix.Close(fd)

	maxResponses := int(params.MaxResponses)
	if maxResponses == 0 {
		maxResponses = 255
	}

	buf := make([]byte, inquiryReqSize+maxResponses*inquiryInfoSize)
	binary.LittleEndian.PutUint16(buf[0:], uint16(id))
	binary.LittleEndian.PutUint16(buf[2:], uint16(params.Flags))
	copy(buf[4:7], giac[:])
	buf[7] = params.Length
	buf[8] = uint8(maxResponses)

	log.Debug().
		Int("DeviceID", id).
		Stringer("Params", params).
		Msg("hci: starting inquiry")

	if err := ioctl(fd, ioctlInquiry, buf); err != nil {
		if err == unix.ENODEV || err == unix.ENETDOWN {
			return nil, pkgerrors.Wrapf(ErrNoAdapter, "inquiry on hci%d: %v", id, err)
		}

		return nil, pkgerrors.Wrapf(err, "inquiry on hci%d", id)
	}

	return parseInquiry(buf)
}

func parseInquiry(buf []byte) ([]InquiryResult, error) {
	num := int(buf[8])
	if inquiryReqSize+num*inquiryInfoSize > len(buf) {
		return nil, fmt.Errorf("inquiry reported %d responses, buffer holds %d", num, (len(buf)-inquiryReqSize)/inquiryInfoSize)
	}

	results := make([]InquiryResult, 0, num)

	for i := 0; i < num; i++ {
		info := buf[inquiryReqSize+i*inquiryInfoSize:]

		results = append(results, InquiryResult{
			Addr:  toHardwareAddr(info[0:6]),
			Class: device.Class{info[9], info[10], info[11]},
		})
	}

	return results, nil
}
