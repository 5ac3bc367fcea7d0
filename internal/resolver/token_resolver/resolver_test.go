package token_resolver_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horockey/kubeping/internal/model"
	"github.com/horockey/kubeping/internal/resolver/token_resolver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func selfSignedPEM(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "kubernetes-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func baseConfig(t *testing.T) model.Config {
	return model.Config{
		MasterHost: "10.96.0.1",
		MasterPort: "443",
		Namespace:  "my-app",
		TokenFile:  writeFile(t, "token", []byte("  secret-token\n")),
		CACertFile: filepath.Join(t.TempDir(), "absent-ca.crt"),
		Port:       7000,
		Hostname:   "node-0",
	}
}

func Test_BuildURL(t *testing.T) {
	assert.Equal(t,
		"https://10.96.0.1:443/api/v1/namespaces/my-app/pods",
		token_resolver.BuildURL("https", "10.96.0.1:443", "v1", "my-app", ""),
	)
	assert.Equal(t,
		"http://api:8080/api/v1/namespaces/my%20app/pods?labelSelector=app%3Dweb%2Ctier%21%3Ddb",
		token_resolver.BuildURL("http", "api:8080", "v1", "my app", "app=web,tier!=db"),
	)
}

func Test_NegotiateAuth(t *testing.T) {
	assert.Equal(t, model.AuthToken, token_resolver.NegotiateAuth(model.Config{}))
	assert.Equal(t, model.AuthCertificate, token_resolver.NegotiateAuth(model.Config{ClientCertFile: "/tls.crt"}))
}

func Test_Resolve_Token(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Labels = "app=web"

	ep, err := token_resolver.New(cfg, zerolog.Nop()).Resolve()
	require.NoError(t, err)

	assert.Equal(t, "https://10.96.0.1:443/api/v1/namespaces/my-app/pods?labelSelector=app%3Dweb", ep.URL)
	assert.Equal(t, "10.96.0.1:443", ep.Host)
	assert.Equal(t, "Bearer secret-token", ep.Headers["Authorization"])
	assert.Equal(t, model.AuthToken, ep.Auth)
	assert.Nil(t, ep.TLS)
}

func Test_Resolve_PlainHTTPWithoutPort(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Protocol = "http"
	cfg.MasterPort = ""
	cfg.APIVersion = "v2"

	ep, err := token_resolver.New(cfg, zerolog.Nop()).Resolve()
	require.NoError(t, err)

	assert.Equal(t, "http://10.96.0.1/api/v2/namespaces/my-app/pods", ep.URL)
	assert.Nil(t, ep.TLS)
}

func Test_Resolve_CACert(t *testing.T) {
	cfg := baseConfig(t)
	cfg.CACertFile = writeFile(t, "ca.crt", selfSignedPEM(t))

	ep, err := token_resolver.New(cfg, zerolog.Nop()).Resolve()
	require.NoError(t, err)

	require.NotNil(t, ep.TLS)
	assert.NotNil(t, ep.TLS.RootCAs)
}

func Test_Resolve_BadCACert(t *testing.T) {
	cfg := baseConfig(t)
	cfg.CACertFile = writeFile(t, "ca.crt", []byte("not a certificate"))

	_, err := token_resolver.New(cfg, zerolog.Nop()).Resolve()

	cfgErr := model.ConfigurationError{}
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "ca_cert_file", cfgErr.Setting)
}

func Test_Resolve_CertificateAuthUnsupported(t *testing.T) {
	cfg := baseConfig(t)
	cfg.ClientCertFile = "/etc/tls/client.crt"

	_, err := token_resolver.New(cfg, zerolog.Nop()).Resolve()

	cfgErr := model.ConfigurationError{}
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "client_cert_file", cfgErr.Setting)

	authErr := model.UnsupportedAuthError{}
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, model.AuthCertificate, authErr.Mode)
}

func Test_Resolve_ConfigErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		mutate  func(*model.Config)
		setting string
	}{
		"missing namespace": {func(c *model.Config) { c.Namespace = "" }, "namespace"},
		"missing host":      {func(c *model.Config) { c.MasterHost = "" }, "master_host"},
		"unknown protocol":  {func(c *model.Config) { c.Protocol = "ftp" }, "master_protocol"},
		"missing token":     {func(c *model.Config) { c.TokenFile = "/nonexistent/token" }, "sa_token_file"},
		"empty token": {func(c *model.Config) {
			c.TokenFile = writeFile(t, "empty", []byte("\n"))
		}, "sa_token_file"},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig(t)
			tc.mutate(&cfg)

			_, err := token_resolver.New(cfg, zerolog.Nop()).Resolve()

			cfgErr := model.ConfigurationError{}
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.setting, cfgErr.Setting)
		})
	}
}
