package device

import "fmt"

// Class is the 3-byte class of device reported by an inquiry response,
// least significant byte first.
type Class [3]byte

func (c Class) Major() uint8 {
	return c[1] & 0x1f
}

func (c Class) Minor() uint8 {
	return (c[0] & 0xfc) >> 2
}

// Type resolves the class to a human readable device type. The major class
// selects an entry; majors with a minor table are refined by the minor class
// and fall back to the major label when the minor class is unknown.
func (c Class) Type() (string, bool) {
	return lookupClass(majorClasses, c.Major(), c.Minor())
}

func (c Class) String() string {
	return fmt.Sprintf("0x%02x%02x%02x", c[2], c[1], c[0])
}

type classEntry struct {
	code  uint8
	label string
	minor []classEntry
}

func lookupClass(table []classEntry, codes ...uint8) (string, bool) {
	if len(codes) == 0 {
		return "", false
	}

	for _, e := range table {
		if e.code != codes[0] {
			continue
		}

		if e.minor != nil {
			if label, ok := lookupClass(e.minor, codes[1:]...); ok {
				return label, true
			}
		}

		return e.label, true
	}

	return "", false
}

var (
	computerClasses = []classEntry{
		{code: 0x00, label: "Uncategorized, code for device not assigned"},
		{code: 0x01, label: "Desktop workstation"},
		{code: 0x02, label: "Server-class computer"},
		{code: 0x03, label: "Laptop"},
		{code: 0x04, label: "Handheld PC/PDA (clam shell)"},
		{code: 0x05, label: "Palm sized PC/PDA"},
		{code: 0x06, label: "Wearable computer (Watch sized)"},
		{code: 0x07, label: "Tablet"},
	}

	phoneClasses = []classEntry{
		{code: 0x00, label: "Uncategorized, code for device not assigned"},
		{code: 0x01, label: "Cellular"},
		{code: 0x02, label: "Cordless"},
		{code: 0x03, label: "Smart phone"},
		{code: 0x04, label: "Wired modem or voice gateway"},
		{code: 0x05, label: "Common ISDN Access"},
	}

	audioVideoClasses = []classEntry{
		{code: 0x00, label: "Uncategorized, code for device not assigned"},
		{code: 0x01, label: "Wearable Headset Device"},
		{code: 0x02, label: "Hands-free Device"},
		{code: 0x04, label: "Microphone"},
		{code: 0x05, label: "Loudspeaker"},
		{code: 0x06, label: "Headphones"},
		{code: 0x07, label: "Portable Audio"},
		{code: 0x08, label: "Car audio"},
		{code: 0x09, label: "Set-top box"},
		{code: 0x0a, label: "HiFi Audio Device"},
		{code: 0x0b, label: "VCR"},
		{code: 0x0c, label: "Video Camera"},
		{code: 0x0d, label: "Camcorder"},
		{code: 0x0e, label: "Video Monitor"},
		{code: 0x0f, label: "Video Display and Loudspeaker"},
		{code: 0x10, label: "Video Conferencing"},
		{code: 0x12, label: "Gaming/Toy"},
	}

	wearableClasses = []classEntry{
		{code: 0x01, label: "Wrist Watch"},
		{code: 0x02, label: "Pager"},
		{code: 0x03, label: "Jacket"},
		{code: 0x04, label: "Helmet"},
		{code: 0x05, label: "Glasses"},
	}

	majorClasses = []classEntry{
		{code: 0x00, label: "Miscellaneous"},
		{code: 0x01, label: "Computer (desktop, notebook, PDA, organizers)", minor: computerClasses},
		{code: 0x02, label: "Phone (cellular, cordless, payphone, modem)", minor: phoneClasses},
		{code: 0x03, label: "LAN /Network Access point"},
		{code: 0x04, label: "Audio/Video (headset, speaker, stereo, video, vcr)", minor: audioVideoClasses},
		{code: 0x05, label: "Peripheral (mouse, joystick, keyboards)"},
		{code: 0x06, label: "Imaging (printing, scanner, camera, display)"},
		{code: 0x07, label: "Wearable", minor: wearableClasses},
		{code: 0x08, label: "Toy"},
		{code: 0x09, label: "Health"},
		{code: 0x1f, label: "Uncategorized, specific device code not specified"},
	}
)
