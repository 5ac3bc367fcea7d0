package kubeping

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/kubeping/internal/config"
	"github.com/horockey/kubeping/internal/controller/http_controller"
	"github.com/horockey/kubeping/internal/gateway/pod_snapshots"
	"github.com/horockey/kubeping/internal/gateway/pod_snapshots/http_pod_snapshots"
	"github.com/horockey/kubeping/internal/mapper"
	"github.com/horockey/kubeping/internal/processor"
	"github.com/horockey/kubeping/internal/resolver/token_resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var ErrNoController = errors.New("http controller is not configured")

var _ Controller = &http_controller.HttpController{}

// Provider discovers cluster peers through the Kubernetes pods API.
// It is ready to use right after creation and safe for concurrent Discover calls.
type Provider struct {
	*processor.Processor
	snapshots pod_snapshots.Gateway
	ctrl      Controller
}

type createProviderParams struct {
	logger                 zerolog.Logger
	startTime              time.Time
	hashFunc               HashFunc
	allowNegativeAliveTime bool
	httpAddr               string

	resolver   Resolver
	snapshots  pod_snapshots.Gateway
	controller Controller
}

func defaultCreateProviderParams() createProviderParams {
	return createProviderParams{
		hashFunc: mapper.MD5,
		logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("scope", "kubeping").
			Logger(),
	}
}

// New validates cfg, resolves the API endpoint and captures the process identity.
// Any returned error means clustering must stay disabled for this process.
func New(cfg Config, opts ...options.Option[createProviderParams]) (*Provider, error) {
	params := defaultCreateProviderParams()
	params.startTime = time.Now()
	if err := options.ApplyOptions(&params, opts...); err != nil {
		return nil, fmt.Errorf("applying opts: %w", err)
	}

	cfg = cfg.WithDefaults()
	if cfg.Hostname == "" {
		hn, err := os.Hostname()
		if err != nil {
			return nil, ConfigurationError{Setting: "hostname", Reason: "not set and local hostname is unavailable", Err: err}
		}
		cfg.Hostname = hn
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if params.snapshots == nil {
		if params.resolver == nil {
			params.resolver = token_resolver.New(
				cfg,
				params.logger.With().Str("subscope", "resolver").Logger(),
			)
		}

		ep, err := params.resolver.Resolve()
		if err != nil {
			return nil, fmt.Errorf("resolving endpoint: %w", err)
		}

		params.snapshots = http_pod_snapshots.New(
			ep,
			cfg.ConnectTimeout,
			cfg.ReadTimeout,
			params.logger.With().Str("subscope", "pod_snapshots").Logger(),
		)
	}

	if params.controller == nil && params.httpAddr != "" {
		params.controller = http_controller.New(
			params.httpAddr,
			params.logger.With().Str("subscope", "http_controller").Logger(),
		)
	}

	params.logger.
		Info().
		Str("namespace", cfg.Namespace).
		Str("hostname", cfg.Hostname).
		Int("port", cfg.Port).
		Msg("namespace set; clustering enabled")

	proc := processor.New(
		params.snapshots,
		mapper.New(params.hashFunc, params.allowNegativeAliveTime),
		Identity{
			Hostname:  cfg.Hostname,
			StartTime: params.startTime,
		},
		cfg.Port,
		params.logger,
	)

	return &Provider{
		Processor: proc,
		snapshots: params.snapshots,
		ctrl:      params.controller,
	}, nil
}

// NewFromEnv loads the config from environment variables and calls New.
func NewFromEnv(opts ...options.Option[createProviderParams]) (*Provider, error) {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return New(cfg, opts...)
}

// Start serves the http controller until ctx is done.
func (p *Provider) Start(ctx context.Context) error {
	if p.ctrl == nil {
		return ErrNoController
	}

	reg := prometheus.NewRegistry()
	for _, c := range p.Metrics() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
	}

	if err := p.ctrl.Start(ctx, p.Processor, reg); err != nil {
		return fmt.Errorf("running http controller: %w", err)
	}
	return fmt.Errorf("running context: %w", ctx.Err())
}

func (p *Provider) Metrics() []prometheus.Collector {
	res := slices.Concat(
		p.Processor.Metrics(),
		p.snapshots.Metrics(),
	)
	if p.ctrl != nil {
		res = slices.Concat(res, p.ctrl.Metrics())
	}
	return res
}
