package model

import (
	"time"
)

const (
	DefaultProtocol       = "https"
	DefaultAPIVersion     = "v1"
	DefaultTokenFile      = "/var/run/secrets/kubernetes.io/serviceaccount/token"
	DefaultCACertFile     = "/var/run/secrets/kubernetes.io/serviceaccount/ca.crt"
	DefaultConnectTimeout = time.Second
	DefaultReadTimeout    = time.Second
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Protocol   string
	MasterHost string
	MasterPort string
	APIVersion string
	Namespace  string
	// Optional label selector, e.g. "app=web,tier!=db".
	Labels string

	TokenFile      string
	CACertFile     string
	ClientCertFile string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// Cluster listen port advertised for every peer.
	Port     int
	Hostname string
}

// WithDefaults returns a copy of cfg with empty optional fields filled in.
func (cfg Config) WithDefaults() Config {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = DefaultTokenFile
	}
	if cfg.CACertFile == "" {
		cfg.CACertFile = DefaultCACertFile
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	return cfg
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Namespace == "":
		return ConfigurationError{Setting: "namespace", Reason: "not set"}
	case cfg.Port <= 0 || cfg.Port > 65535:
		return ConfigurationError{Setting: "port", Reason: "must be in 1..65535"}
	case cfg.Hostname == "":
		return ConfigurationError{Setting: "hostname", Reason: "not set"}
	}
	return nil
}
