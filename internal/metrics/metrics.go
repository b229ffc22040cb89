package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artifactstore",
		Name:      "operations_total",
		Help:      "Store operations by backend, operation and result.",
	}, []string{"backend", "op", "result"})
	Bytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artifactstore",
		Name:      "bytes_total",
		Help:      "Payload bytes moved by backend and direction.",
	}, []string{"backend", "direction"})
)

// Collectors returns every collector for registration by the caller.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Operations, Bytes}
}

func Observe(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Operations.WithLabelValues(backend, op, result).Inc()
}

func AddBytes(backend, direction string, n int) {
	if n <= 0 {
		return
	}
	Bytes.WithLabelValues(backend, direction).Add(float64(n))
}
