package processor

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist    prometheus.Histogram
	discoveriesCnt    prometheus.Counter
	errDiscoveriesCnt prometheus.Counter
	skippedEntriesCnt *prometheus.CounterVec
	membersCnt        prometheus.Gauge
}

func newMetrics() *metrics {
	const ss = "processor"
	return &metrics{
		handleTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Discovery time distribution"),
		)),
		discoveriesCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "discoveries_cnt",
			Subsystem: ss,
			Help:      "Count of discovery calls",
		}),
		errDiscoveriesCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_discoveries_cnt",
			Subsystem: ss,
			Help:      "Count of discovery calls finished with non-nil error",
		}),
		skippedEntriesCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "skipped_entries_cnt",
			Subsystem: ss,
			Help:      "Count of snapshot entries skipped, by reason",
		}, []string{"reason"}),
		membersCnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "members",
			Subsystem: ss,
			Help:      "Count of members returned by the last successful discovery",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.discoveriesCnt,
		m.errDiscoveriesCnt,
		m.skippedEntriesCnt,
		m.membersCnt,
	}
}
