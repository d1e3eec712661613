package oui

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/robertof/go-btinfo/device"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix   = "OUI:"
	vendorField = "ID_OUI_FROM_DATABASE="
)

// DefaultDirs are the udev hwdb source directories, in increasing priority.
var DefaultDirs = []string{
	"/lib/udev/hwdb.d",
	"/usr/lib/udev/hwdb.d",
	"/etc/udev/hwdb.d",
}

// HWDB resolves vendor names from the udev hardware database source files.
// The files are parsed on first use.
type HWDB struct {
	dirs []string

	once    sync.Once
	vendors map[string]string
}

func NewHWDB(dirs ...string) *HWDB {
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}

	return &HWDB{dirs: dirs}
}

// Lookup returns the vendor registered for the OUI of addr.
func (h *HWDB) Lookup(addr net.HardwareAddr) (string, bool) {
	h.once.Do(h.load)

	name, ok := h.vendors[device.OUI(addr)]

	return name, ok
}

func (h *HWDB) Len() int {
	h.once.Do(h.load)

	return len(h.vendors)
}

func (h *HWDB) load() {
	h.vendors = make(map[string]string)

	var files []string

	for _, dir := range h.dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.hwdb"))
		if err != nil {
			continue
		}

		sort.Strings(matches)
		files = append(files, matches...)
	}

	for _, path := range files {
		if err := h.loadFile(path); err != nil {
			log.Warn().Err(err).Str("Path", path).Msg("failed to read hwdb file")
		}
	}

	if len(h.vendors) == 0 {
		log.Warn().Strs("Dirs", h.dirs).Msg("no OUI entries found in hwdb")
	} else {
		log.Debug().Int("Entries", len(h.vendors)).Msg("loaded OUI vendor database")
	}
}

func (h *HWDB) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := parse(f, h.vendors); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	return nil
}

// parse reads hwdb records into vendors. A record is one or more match lines
// followed by indented KEY=value lines and ends at a blank line. Only exact
// 24-bit OUI matches are kept.
func parse(r io.Reader, vendors map[string]string) error {
	var keys []string
	inProps := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			keys = keys[:0]
			inProps = false

		case line[0] == ' ' || line[0] == '\t':
			inProps = true
			prop := strings.TrimSpace(line)

			if !strings.HasPrefix(prop, vendorField) {
				continue
			}

			name := strings.TrimPrefix(prop, vendorField)
			for _, k := range keys {
				vendors[k] = name
			}

		default:
			if inProps {
				keys = keys[:0]
				inProps = false
			}

			if k, ok := ouiKey(line); ok {
				keys = append(keys, k)
			}
		}
	}

	return scanner.Err()
}

func ouiKey(match string) (string, bool) {
	if !strings.HasPrefix(match, keyPrefix) {
		return "", false
	}

	k := strings.TrimSuffix(strings.TrimPrefix(match, keyPrefix), "*")
	if len(k) != 6 {
		return "", false
	}

	for _, c := range k {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return "", false
		}
	}

	return k, true
}
