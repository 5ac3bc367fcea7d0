package token_resolver

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/horockey/kubeping/internal/model"
	"github.com/horockey/kubeping/internal/resolver"
	"github.com/rs/zerolog"
)

var _ resolver.Resolver = &tokenResolver{}

type tokenResolver struct {
	cfg      model.Config
	logger   zerolog.Logger
	readFile func(name string) ([]byte, error)
}

func New(cfg model.Config, logger zerolog.Logger) *tokenResolver {
	return &tokenResolver{
		cfg:      cfg.WithDefaults(),
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// NegotiateAuth picks the auth mode implied by the configured credential material.
func NegotiateAuth(cfg model.Config) model.AuthMode {
	if cfg.ClientCertFile != "" {
		return model.AuthCertificate
	}
	return model.AuthToken
}

func (r *tokenResolver) Resolve() (model.Endpoint, error) {
	if mode := NegotiateAuth(r.cfg); mode != model.AuthToken {
		return model.Endpoint{}, model.ConfigurationError{
			Setting: "client_cert_file",
			Reason:  "only service account token auth is available, unset the client certificate",
			Err:     model.UnsupportedAuthError{Mode: mode},
		}
	}

	if r.cfg.Namespace == "" {
		return model.Endpoint{}, model.ConfigurationError{Setting: "namespace", Reason: "not set"}
	}
	if r.cfg.MasterHost == "" {
		return model.Endpoint{}, model.ConfigurationError{Setting: "master_host", Reason: "not set"}
	}

	protocol := r.cfg.Protocol
	if protocol == "" {
		protocol = model.DefaultProtocol
	}
	if protocol != "http" && protocol != "https" {
		return model.Endpoint{}, model.ConfigurationError{
			Setting: "master_protocol",
			Reason:  fmt.Sprintf("unknown protocol %q", protocol),
		}
	}

	token, err := r.readToken()
	if err != nil {
		return model.Endpoint{}, err
	}

	ep := model.Endpoint{
		Host: hostPort(r.cfg.MasterHost, r.cfg.MasterPort),
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
		},
		Auth: model.AuthToken,
	}
	ep.URL = BuildURL(protocol, ep.Host, r.cfg.APIVersion, r.cfg.Namespace, r.cfg.Labels)

	if protocol == "https" {
		tlsCfg, err := r.loadCA()
		if err != nil {
			return model.Endpoint{}, err
		}
		ep.TLS = tlsCfg
	}

	return ep, nil
}

// BuildURL renders the pod list URL of the namespace.
// The label selector is appended only when non-empty.
func BuildURL(protocol, host, apiVersion, namespace, labels string) string {
	u := fmt.Sprintf(
		"%s://%s/api/%s/namespaces/%s/pods",
		protocol,
		host,
		apiVersion,
		url.PathEscape(namespace),
	)
	if labels != "" {
		u += "?" + url.Values{"labelSelector": []string{labels}}.Encode()
	}
	return u
}

func hostPort(host, port string) string {
	if port == "" {
		return host
	}
	return net.JoinHostPort(host, port)
}

func (r *tokenResolver) readToken() (string, error) {
	data, err := r.readFile(r.cfg.TokenFile)
	if err != nil {
		return "", model.ConfigurationError{
			Setting: "sa_token_file",
			Reason:  fmt.Sprintf("reading %s", r.cfg.TokenFile),
			Err:     err,
		}
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", model.ConfigurationError{
			Setting: "sa_token_file",
			Reason:  fmt.Sprintf("%s is empty", r.cfg.TokenFile),
		}
	}
	return token, nil
}

func (r *tokenResolver) loadCA() (*tls.Config, error) {
	data, err := r.readFile(r.cfg.CACertFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.
			Warn().
			Str("ca_cert_file", r.cfg.CACertFile).
			Msg("CA certificate not found, using system roots")
		return nil, nil
	case err != nil:
		return nil, model.ConfigurationError{
			Setting: "ca_cert_file",
			Reason:  fmt.Sprintf("reading %s", r.cfg.CACertFile),
			Err:     err,
		}
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, model.ConfigurationError{
			Setting: "ca_cert_file",
			Reason:  fmt.Sprintf("no PEM certificates in %s", r.cfg.CACertFile),
		}
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
