package model

import "crypto/tls"

type AuthMode int

const (
	AuthUnsupported AuthMode = iota
	AuthToken
	AuthCertificate
)

func (m AuthMode) String() string {
	switch m {
	case AuthToken:
		return "token"
	case AuthCertificate:
		return "certificate"
	default:
		return "unsupported"
	}
}

// Endpoint is everything the snapshot fetcher needs to query the control plane.
type Endpoint struct {
	URL     string
	Host    string
	Headers map[string]string
	Auth    AuthMode
	// Nil means system defaults.
	TLS *tls.Config
}
