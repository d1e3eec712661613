package main

import (
	"context"

	"github.com/robertof/go-btinfo/device"
	"github.com/robertof/go-btinfo/hci"
	"github.com/robertof/go-btinfo/scanner"
	"github.com/robertof/go-btinfo/utils"
	"github.com/rs/zerolog/log"
)

func doDeviceDiscovery(ctx context.Context, cfg config, host *hci.Host) {
	adapters, err := host.Adapters()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list Bluetooth adapters")
	}

	log.Info().
		Array("Adapters", utils.ToZeroLogArray(adapters)).
		Msg("Found Bluetooth adapters")

	id := cfg.BluetoothDeviceId
	if id < 0 {
		if id, err = host.Route(nil); err != nil {
			log.Fatal().Err(err).Msg("No Bluetooth adapter is up")
		}
	}

	params := scanner.DefaultInquiryParams()

	log.Info().
		Int("DeviceID", id).
		Stringer("Params", params).
		Msg("Starting in device discovery mode - running a single inquiry...")

	results, err := host.Inquiry(ctx, id, params)
	if err != nil {
		log.Fatal().Err(err).Msg("Inquiry failed")
	}

	// the controller may report a device more than once.
	devices := make(map[string]device.Class)
	for _, r := range results {
		devices[device.FormatAddress(r.Addr)] = r.Class
	}

	log.Info().Int("Found", len(devices)).Msg("Finished device discovery")

	for _, addr := range utils.SortedKeys(devices) {
		class := devices[addr]
		label, _ := class.Type()

		log.Info().
			Str("Addr", addr).
			Stringer("Class", class).
			Str("Type", label).
			Msg("Found device")
	}
}
