package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robertof/go-btinfo/enrich"
	"github.com/robertof/go-btinfo/hci"
	"github.com/robertof/go-btinfo/oui"
	"github.com/robertof/go-btinfo/scanner"
	"github.com/robertof/go-btinfo/store"
	"github.com/robertof/go-btinfo/utils"
	"golang.org/x/exp/slices"
)

type config struct {
	Debug, Trace         bool
	ConfigFile           string
	DatabasePath         string
	Table                string
	BindAddress          string
	EnableMetamonitoring bool
	DiscoverDevices      bool
	WatchAdapters        bool
	BluetoothDeviceId    int
	BluetoothConnParams  hci.ConnParams
	Interval             time.Duration
	RetryDelay           time.Duration
	ConnectTimeout       time.Duration
	NameTimeout          time.Duration
	VersionTimeout       time.Duration
	HWDBDirs             []string
}

type dirList struct {
	list *[]string
	set  bool
}

func (d *dirList) String() string {
	if d.list == nil {
		return ""
	}

	return fmt.Sprint(*d.list)
}

// repeated flags accumulate, the first one replaces the defaults.
func (d *dirList) Set(v string) error {
	if !d.set {
		*d.list = nil
		d.set = true
	}

	*d.list = append(*d.list, v)

	return nil
}

func newFlagSet(cfg *config) *flag.FlagSet {
	fs := flag.NewFlagSet("btinfo", flag.ContinueOnError)

	cfg.BluetoothConnParams = hci.ConnParamsDefault
	cfg.HWDBDirs = slices.Clone(oui.DefaultDirs)

	fs.StringVar(&cfg.ConfigFile, "config", "", "TOML file with defaults for any of these flags, keyed by flag name")
	fs.StringVar(&cfg.DatabasePath, "db", store.DefaultPath, "SQLite database holding the device records")
	fs.StringVar(&cfg.Table, "table", store.DefaultTable, "Table name for the device records")
	fs.StringVar(&cfg.BindAddress, "bind", "", "Where the metrics endpoint will bind to (disabled when empty)")
	fs.BoolVar(&cfg.EnableMetamonitoring, "metamonitoring", true, "Enable metamonitoring metrics")
	fs.BoolVar(&cfg.DiscoverDevices, "discover", false, "Run a single inquiry, print the devices found and quit")
	fs.BoolVar(&cfg.WatchAdapters, "watch-adapters", true, "Log Bluetooth adapters being plugged or unplugged")
	fs.IntVar(&cfg.BluetoothDeviceId, "bluetooth-device", -1,
		"Bluetooth (HCI) device ID. Negative picks the default adapter and resolves one per device")
	fs.Var(&cfg.BluetoothConnParams, "bluetooth-connection-params",
		"Bluetooth connection parameters (one of 'default' or 'no-role-switch')")
	fs.DurationVar(&cfg.Interval, "interval", 0, "Pause between scan cycles")
	fs.DurationVar(&cfg.RetryDelay, "retry-delay", scanner.DefaultRetryDelay, "Minimum pause after a failed inquiry")
	fs.DurationVar(&cfg.ConnectTimeout, "connect-timeout", enrich.DefaultConnectTimeout, "Timeout for connecting to a device")
	fs.DurationVar(&cfg.NameTimeout, "name-timeout", enrich.DefaultNameTimeout, "Timeout for reading the remote name")
	fs.DurationVar(&cfg.VersionTimeout, "version-timeout", enrich.DefaultVersionTimeout, "Timeout for reading the remote version")
	fs.Var(&dirList{list: &cfg.HWDBDirs}, "hwdb", "udev hwdb.d directory with OUI vendor data, tried before the built-in IEEE registry (repeatable)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logs")
	fs.BoolVar(&cfg.Trace, "trace", false, "Enable trace logs")

	return fs
}

func parseArgs(args []string) (config, error) {
	var cfg config

	fs := newFlagSet(&cfg)

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.ConfigFile != "" {
		if err := applyConfigFile(fs, cfg.ConfigFile); err != nil {
			return cfg, err
		}
	}

	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return cfg, nil
}

// applyConfigFile sets every flag named in the TOML file at path that was
// not given on the command line.
func applyConfigFile(fs *flag.FlagSet, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	values := make(map[string]any)

	if err := toml.NewDecoder(file).Decode(&values); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	for _, key := range utils.SortedKeys(values) {
		if key == "config" || fs.Lookup(key) == nil {
			return fmt.Errorf("config %s: unknown key %q", path, key)
		}

		if explicit[key] {
			continue
		}

		var vals []any
		if list, ok := values[key].([]any); ok {
			vals = list
		} else {
			vals = []any{values[key]}
		}

		for _, v := range vals {
			s, err := tomlValueString(v)
			if err != nil {
				return fmt.Errorf("config %s: key %q: %w", path, key, err)
			}

			if err := fs.Set(key, s); err != nil {
				return fmt.Errorf("config %s: key %q: %w", path, key, err)
			}
		}
	}

	return nil
}

func tomlValueString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func ParseArgs() config {
	cfg, err := parseArgs(os.Args[1:])

	if err == flag.ErrHelp {
		os.Exit(0)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	return cfg
}

func (c config) enrichOptions() enrich.Options {
	opts := enrich.DefaultOptions()
	opts.ConnectTimeout = c.ConnectTimeout
	opts.NameTimeout = c.NameTimeout
	opts.VersionTimeout = c.VersionTimeout

	return opts
}
