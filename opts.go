package kubeping

import (
	"errors"
	"time"

	"github.com/horockey/go-toolbox/options"
	"github.com/horockey/kubeping/internal/gateway/pod_snapshots"
	"github.com/rs/zerolog"
)

// Sets custom logger.
// Default is stdout logger.
func WithLogger(l zerolog.Logger) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		target.logger = l
		return nil
	}
}

// Sets the process start time used as the reference for peers alive time.
// Default is the moment New was called.
func WithStartTime(ts time.Time) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		if ts.IsZero() {
			return errors.New("got zero start time")
		}
		target.startTime = ts
		return nil
	}
}

// Sets custom unique id func.
// Default is md5 of the pod name.
func WithHashFunc(hf HashFunc) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		if hf == nil {
			return errors.New("got nil hashfunc")
		}
		target.hashFunc = hf
		return nil
	}
}

// Reports negative alive time for peers created after this process started.
// By default such values are clamped to 0.
func WithNegativeAliveTime() options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		target.allowNegativeAliveTime = true
		return nil
	}
}

// Enables http controller with GET /members and GET /metrics on addr.
// Served by Provider.Start.
func WithHTTPAddr(addr string) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		if addr == "" {
			return errors.New("got empty http addr")
		}
		target.httpAddr = addr
		return nil
	}
}

// Sets user-defined endpoint and credentials resolver.
// Default reads the service account token.
func WithResolver(r Resolver) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		if r == nil {
			return errors.New("got nil resolver")
		}
		target.resolver = r
		return nil
	}
}

// Sets user-defined implementation of snapshot gateway. Resolver is not used then.
//
// WARNING! Apply this opt only if you know what you are doing.
func WithSnapshotsGateway(gw pod_snapshots.Gateway) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		if gw == nil {
			return errors.New("got nil snapshots gateway")
		}
		target.snapshots = gw
		return nil
	}
}

// Sets user-defined controller.
//
// WARNING! Apply this opt only if you know what you are doing.
func WithController(ctrl Controller) options.Option[createProviderParams] {
	return func(target *createProviderParams) error {
		if ctrl == nil {
			return errors.New("got nil controller")
		}
		target.controller = ctrl
		return nil
	}
}
