package oui

import (
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sample = `# This file is part of systemd.
#
# Data imported from: https://standards-oui.ieee.org/oui/oui.txt

OUI:000000*
 ID_OUI_FROM_DATABASE=OFFICIALLY XEROX CORPORATION

OUI:0050C2000*
 ID_OUI_FROM_DATABASE=T.L.S. Corp.

OUI:001A7D*
OUI:001A7E*
 ID_OUI_FROM_DATABASE=cyber-blue(HK)Ltd
 ID_OTHER=ignored

OUI:3C5AB4*
 ID_OUI_FROM_DATABASE=Google, Inc.
`

func TestParse(t *testing.T) {
	got := map[string]string{}

	if err := parse(strings.NewReader(sample), got); err != nil {
		t.Fatalf("parse() got error: %v", err)
	}

	want := map[string]string{
		"000000": "OFFICIALLY XEROX CORPORATION",
		"001A7D": "cyber-blue(HK)Ltd",
		"001A7E": "cyber-blue(HK)Ltd",
		"3C5AB4": "Google, Inc.",
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parse(): got %+#v, wanted %+#v", got, want)
	}
}

func TestHWDBLookup(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()

	if err := os.WriteFile(filepath.Join(low, "20-OUI.hwdb"), []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	override := "OUI:3C5AB4*\n ID_OUI_FROM_DATABASE=Google LLC\n"
	if err := os.WriteFile(filepath.Join(high, "90-local.hwdb"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	db := NewHWDB(low, high, filepath.Join(low, "missing"))

	tests := []struct {
		addr   net.HardwareAddr
		want   string
		wantOk bool
	}{
		{net.HardwareAddr{0x3c, 0x5a, 0xb4, 0x01, 0x02, 0x03}, "Google LLC", true},
		{net.HardwareAddr{0x00, 0x1a, 0x7e, 0xff, 0xff, 0xff}, "cyber-blue(HK)Ltd", true},
		{net.HardwareAddr{0x00, 0x50, 0xc2, 0x00, 0x01, 0x02}, "", false},
		{net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, "", false},
	}

	for _, tt := range tests {
		got, ok := db.Lookup(tt.addr)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("Lookup(%v): got (%q, %v), wanted (%q, %v)", tt.addr, got, ok, tt.want, tt.wantOk)
		}
	}

	if db.Len() != 4 {
		t.Fatalf("Len(): got %d, wanted 4", db.Len())
	}
}

func TestHWDBEmpty(t *testing.T) {
	db := NewHWDB(t.TempDir())

	if _, ok := db.Lookup(net.HardwareAddr{0, 0, 0, 1, 2, 3}); ok {
		t.Fatal("Lookup() on an empty database must miss")
	}
}
