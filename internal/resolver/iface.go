package resolver

import "github.com/horockey/kubeping/internal/model"

// Resolver turns configuration into a ready-to-query control plane endpoint.
// Any error it returns is fatal for the provider.
type Resolver interface {
	Resolve() (model.Endpoint, error)
}
