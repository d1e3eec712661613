package scanner

import "github.com/prometheus/client_golang/prometheus"

var (
	cyclesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btinfo_scan_cycles_total",
	})
	enrichmentsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "btinfo_enrichments_total",
	}, []string{"outcome"})
	mergesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "btinfo_merges_total",
		Help: "Inventory merges by resulting action.",
	}, []string{"action"})
)

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		cyclesCounter,
		enrichmentsCounter,
		mergesCounter,
	)
}
