package metrics

import "github.com/prometheus/client_golang/prometheus"

// OverlayMetrics holds Prometheus metrics for the overlay stack.
type OverlayMetrics struct {
	Mounted        prometheus.Gauge
	Opened         prometheus.Counter
	Closed         prometheus.Counter
	Misuse         *prometheus.CounterVec
	CallbackPanics prometheus.Counter
	Clears         prometheus.Counter
}

// NewOverlayMetrics creates and registers overlay metrics on the given registry.
func NewOverlayMetrics(reg prometheus.Registerer) *OverlayMetrics {
	m := &OverlayMetrics{
		Mounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "mounted_entries",
			Help:      "Number of entries currently in the overlay stack, closing ones included.",
		}),
		Opened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "opened_total",
			Help:      "Total number of overlays opened.",
		}),
		Closed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "closed_total",
			Help:      "Total number of overlays closed.",
		}),
		Misuse: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "misuse_total",
			Help:      "Total number of ignored overlay operations, by reason.",
		}, []string{"reason"}),
		CallbackPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "callback_panics_total",
			Help:      "Total number of recovered panics in close callbacks.",
		}),
		Clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "clears_total",
			Help:      "Total number of navigation-triggered stack clears.",
		}),
	}

	reg.MustRegister(m.Mounted, m.Opened, m.Closed, m.Misuse, m.CallbackPanics, m.Clears)
	return m
}
