package http_pod_snapshots

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/kubeping/internal/gateway/pod_snapshots"
	"github.com/horockey/kubeping/internal/gateway/pod_snapshots/http_pod_snapshots/dto"
	"github.com/horockey/kubeping/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ pod_snapshots.Gateway = &httpPodSnapshots{}

const maxErrBodyLen = 512

type httpPodSnapshots struct {
	cl      *resty.Client
	url     string
	host    string
	metrics *metrics
	logger  zerolog.Logger
}

// New builds a gateway that opens a fresh connection for every Fetch.
// connectTimeout bounds dialing and the TLS handshake, readTimeout bounds
// waiting for the response.
func New(
	ep model.Endpoint,
	connectTimeout time.Duration,
	readTimeout time.Duration,
	logger zerolog.Logger,
) *httpPodSnapshots {
	dialer := &net.Dialer{Timeout: connectTimeout}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       ep.TLS,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		DisableKeepAlives:     true,
	}

	return &httpPodSnapshots{
		url:     ep.URL,
		host:    ep.Host,
		metrics: newMetrics(),
		logger:  logger,
		cl: resty.New().
			SetTransport(transport).
			SetHeaders(ep.Headers).
			SetTimeout(connectTimeout + readTimeout).
			SetRetryCount(0),
	}
}

func (gw *httpPodSnapshots) Metrics() []prometheus.Collector {
	return gw.metrics.list()
}

func (gw *httpPodSnapshots) Fetch(ctx context.Context) (res model.Snapshot, resErr error) {
	gw.logger.Debug().Str("host", gw.host).Msg("fetching pod snapshot")
	defer func(ts time.Time) {
		gw.metrics.requestsCnt.Inc()
		gw.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			gw.metrics.successProcessCnt.Inc()
			gw.metrics.podsCnt.Set(float64(len(res.Entries)))
		default:
			gw.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	resp, err := gw.cl.R().
		SetContext(ctx).
		Get(gw.url)
	if err != nil {
		return model.Snapshot{}, gw.fetchErr(fmt.Errorf("executing request: %w", err))
	}
	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > maxErrBodyLen {
			body = body[:maxErrBodyLen]
		}
		return model.Snapshot{}, gw.fetchErr(fmt.Errorf("got non-ok response (%s): %s", resp.Status(), body))
	}

	snap, err := dto.PodListToModel(resp.Body())
	if err != nil {
		return model.Snapshot{}, gw.fetchErr(fmt.Errorf("decoding pod list: %w", err))
	}

	return snap, nil
}

func (gw *httpPodSnapshots) fetchErr(err error) error {
	return model.FetchError{Host: gw.host, Err: err}
}
