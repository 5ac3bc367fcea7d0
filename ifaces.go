package kubeping

import (
	"context"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/kubeping/internal/model"
	"github.com/horockey/kubeping/internal/processor"
	"github.com/horockey/kubeping/internal/resolver"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	Config   = model.Config
	Identity = model.Identity
	Member   = model.Member
	Endpoint = model.Endpoint
	AuthMode = model.AuthMode
	HashFunc = model.HashFunc
	Resolver = resolver.Resolver

	Processor = processor.Processor

	Option = options.Option[createProviderParams]
)

const (
	AuthUnsupported = model.AuthUnsupported
	AuthToken       = model.AuthToken
	AuthCertificate = model.AuthCertificate
)

type Controller interface {
	model.MetricsProvider
	Start(ctx context.Context, proc *Processor, gatherer prometheus.Gatherer) error
}
