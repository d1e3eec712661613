package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robertof/go-btinfo/device"
)

const unknownLabel = "unknown"

var (
	descKnownDevices = prometheus.NewDesc(
		"btinfo_known_devices",
		"Devices in the inventory.",
		nil,
		nil,
	)

	descDevicesByType = prometheus.NewDesc(
		"btinfo_known_devices_by_type",
		"Devices in the inventory by device type.",
		[]string{"type"},
		nil,
	)

	descDevicesByManufacturer = prometheus.NewDesc(
		"btinfo_known_devices_by_manufacturer",
		"Devices in the inventory by chipset manufacturer.",
		[]string{"manufacturer"},
		nil,
	)

	descDevicesByLMPVersion = prometheus.NewDesc(
		"btinfo_known_devices_by_lmp_version",
		"Devices in the inventory by Bluetooth core version.",
		[]string{"lmp_version", "version"},
		nil,
	)

	descLastUpdated = prometheus.NewDesc(
		"btinfo_inventory_last_updated_timestamp_seconds",
		"Time the most recently changed device record was written.",
		nil,
		nil,
	)
)

type CollectFunc func() []device.Record

type collector struct {
	CollectFunc
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	records := c.CollectFunc()

	byType := make(map[string]int)
	byManufacturer := make(map[string]int)
	byVersion := make(map[uint8]int)

	var lastUpdated time.Time

	for _, rec := range records {
		byType[labelOrUnknown(rec.DeviceType)]++
		byManufacturer[labelOrUnknown(rec.ManufacturerName)]++

		if v, ok := rec.LMPVersion.Get(); ok {
			byVersion[v]++
		}

		if rec.UpdatedAt.After(lastUpdated) {
			lastUpdated = rec.UpdatedAt
		}
	}

	ch <- prometheus.MustNewConstMetric(descKnownDevices, prometheus.GaugeValue, float64(len(records)))

	// one series for the whole inventory, addresses are unbounded.
	if !lastUpdated.IsZero() {
		ch <- prometheus.MustNewConstMetric(descLastUpdated, prometheus.GaugeValue, float64(lastUpdated.Unix()))
	}

	for label, n := range byType {
		ch <- prometheus.MustNewConstMetric(descDevicesByType, prometheus.GaugeValue, float64(n), label)
	}

	for label, n := range byManufacturer {
		ch <- prometheus.MustNewConstMetric(descDevicesByManufacturer, prometheus.GaugeValue, float64(n), label)
	}

	for v, n := range byVersion {
		ch <- prometheus.MustNewConstMetric(
			descDevicesByLMPVersion,
			prometheus.GaugeValue,
			float64(n),
			strconv.Itoa(int(v)),
			device.LMPVersionName(v),
		)
	}
}

func labelOrUnknown(f device.Field[string]) string {
	if v, ok := f.Get(); ok && v != "" {
		return v
	}

	return unknownLabel
}

func RegisterCollector(f CollectFunc, reg prometheus.Registerer) {
	c := &collector{f}

	reg.MustRegister(c)
}
