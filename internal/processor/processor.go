package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/horockey/kubeping/internal/gateway/pod_snapshots"
	"github.com/horockey/kubeping/internal/mapper"
	"github.com/horockey/kubeping/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Processor answers "who else is out there" with one control plane query per call.
// All of its state is set in New and only read afterwards, so Discover may be
// called concurrently.
type Processor struct {
	snapshots pod_snapshots.Gateway
	mapper    *mapper.Mapper
	identity  model.Identity
	port      int
	Logger    zerolog.Logger
	metrics   *metrics
}

func New(
	snapshots pod_snapshots.Gateway,
	mapper *mapper.Mapper,
	identity model.Identity,
	port int,
	logger zerolog.Logger,
) *Processor {
	return &Processor{
		snapshots: snapshots,
		mapper:    mapper,
		identity:  identity,
		port:      port,
		Logger:    logger,
		metrics:   newMetrics(),
	}
}

func (pr *Processor) Metrics() []prometheus.Collector {
	return pr.metrics.list()
}

func (pr *Processor) Identity() model.Identity {
	return pr.identity
}

// Discover returns live peers, never including the local node.
// Only a failed fetch is an error; bad entries are logged and skipped.
func (pr *Processor) Discover(ctx context.Context) ([]model.Member, error) {
	res, err := pr.DiscoverResult(ctx)
	if err != nil {
		return nil, err
	}
	return res.Members, nil
}

func (pr *Processor) DiscoverResult(ctx context.Context) (res mapper.Result, resErr error) {
	defer func(ts time.Time) {
		pr.metrics.discoveriesCnt.Inc()
		pr.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			pr.metrics.membersCnt.Set(float64(len(res.Members)))
		default:
			pr.metrics.errDiscoveriesCnt.Inc()
		}
	}(time.Now())

	snap, err := pr.snapshots.Fetch(ctx)
	if err != nil {
		pr.Logger.
			Error().
			Err(err).
			Msg("discovery unavailable this cycle")
		return mapper.Result{}, fmt.Errorf("fetching snapshot: %w", err)
	}

	res = pr.mapper.Map(snap, pr.identity, pr.port)
	pr.logSkipped(res.Skipped)

	pr.Logger.
		Debug().
		Int("entries", len(snap.Entries)).
		Int("members", len(res.Members)).
		Int("skipped", len(res.Skipped)).
		Msg("discovery finished")

	return res, nil
}

func (pr *Processor) logSkipped(skipped []model.Skip) {
	counts := lo.CountValuesBy(skipped, func(s model.Skip) model.SkipReason {
		return s.Reason
	})
	for reason, cnt := range counts {
		pr.metrics.skippedEntriesCnt.WithLabelValues(string(reason)).Add(float64(cnt))
	}

	for _, s := range skipped {
		switch s.Reason {
		case model.SkipMalformed, model.SkipInvalidAddress:
			pr.Logger.
				Warn().
				Err(s.Err).
				Int("index", s.Index).
				Str("pod", s.Name).
				Str("reason", string(s.Reason)).
				Msg("skipping pod entry")
		default:
			pr.Logger.
				Debug().
				Str("pod", s.Name).
				Str("reason", string(s.Reason)).
				Msg("skipping pod entry")
		}
	}
}
