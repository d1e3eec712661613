package hci

import "strings"

type InquiryFlags uint16

const (
	// Drop the kernel's inquiry cache so devices seen in a previous scan are
	// reported again.
	FlagFlushCache InquiryFlags = 1 << iota
)

func (f InquiryFlags) String() string {
	var flags []string

	if f&FlagFlushCache == FlagFlushCache {
		flags = append(flags, "flush cache")
	}

	if len(flags) == 0 {
		return "none"
	}

	return strings.Join(flags, ", ")
}
