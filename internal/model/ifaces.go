package model

import "github.com/prometheus/client_golang/prometheus"

type MetricsProvider interface {
	Metrics() []prometheus.Collector
}

// HashFunc derives a peer unique id from its instance name.
// Implementations must be safe for concurrent use.
type HashFunc func(name string) []byte
