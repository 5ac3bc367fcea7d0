package kubeping

import "github.com/horockey/kubeping/internal/model"

type (
	ConfigurationError   = model.ConfigurationError
	FetchError           = model.FetchError
	UnsupportedAuthError = model.UnsupportedAuthError
)
