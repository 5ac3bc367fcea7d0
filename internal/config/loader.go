package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/horockey/kubeping/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const EnvPrefix = "OPENSHIFT_KUBE_PING_"

const (
	KeyNamespace         = "namespace"
	KeyMasterProtocol    = "master_protocol"
	KeyMasterHost        = "master_host"
	KeyMasterPort        = "master_port"
	KeyAPIVersion        = "api_version"
	KeyLabels            = "labels"
	KeyTokenFile         = "sa_token_file"
	KeyCACertFile        = "ca_cert_file"
	KeyClientCertFile    = "client_cert_file"
	KeyConnectionTimeout = "connection_timeout"
	KeyReadTimeout       = "read_timeout"
	KeyPort              = "port"
	KeyHostname          = "hostname"
)

type source struct {
	key        string
	candidates []string
	def        any
}

// Candidate env variables per key, first set one wins.
var sources = []source{
	{KeyNamespace, []string{EnvPrefix + "NAMESPACE", "KUBERNETES_NAMESPACE"}, nil},
	{KeyMasterProtocol, []string{EnvPrefix + "MASTER_PROTOCOL"}, model.DefaultProtocol},
	{KeyMasterHost, []string{EnvPrefix + "MASTER_HOST", "KUBERNETES_SERVICE_HOST"}, nil},
	{KeyMasterPort, []string{EnvPrefix + "MASTER_PORT", "KUBERNETES_SERVICE_PORT"}, "443"},
	{KeyAPIVersion, []string{EnvPrefix + "API_VERSION"}, model.DefaultAPIVersion},
	{KeyLabels, []string{EnvPrefix + "LABELS"}, nil},
	{KeyTokenFile, []string{EnvPrefix + "SA_TOKEN_FILE"}, model.DefaultTokenFile},
	{KeyCACertFile, []string{EnvPrefix + "CA_CERT_FILE", "KUBERNETES_CA_CERTIFICATE_FILE"}, model.DefaultCACertFile},
	{KeyClientCertFile, []string{EnvPrefix + "CLIENT_CERT_FILE", "KUBERNETES_CLIENT_CERTIFICATE_FILE"}, nil},
	{KeyConnectionTimeout, []string{EnvPrefix + "CONNECTION_TIMEOUT"}, model.DefaultConnectTimeout.Milliseconds()},
	{KeyReadTimeout, []string{EnvPrefix + "READ_TIMEOUT"}, model.DefaultReadTimeout.Milliseconds()},
	{KeyPort, []string{EnvPrefix + "PORT", "TCP_LISTEN_PORT"}, nil},
	{KeyHostname, []string{EnvPrefix + "HOSTNAME", "HOSTNAME"}, nil},
}

// Loader resolves model.Config once from env variables, an optional .env file
// and anything else already bound to its viper instance (e.g. CLI flags).
type Loader struct {
	v        *viper.Viper
	envFile  string
	hostname func() (string, error)
}

type LoaderOption func(*Loader)

// WithViper makes the loader read from v, so flags bound there take precedence over env.
func WithViper(v *viper.Viper) LoaderOption {
	return func(l *Loader) { l.v = v }
}

// WithEnvFile loads variables from path before resolving. Already set variables are kept.
func WithEnvFile(path string) LoaderOption {
	return func(l *Loader) { l.envFile = path }
}

func WithHostnameFunc(fn func() (string, error)) LoaderOption {
	return func(l *Loader) { l.hostname = fn }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{hostname: os.Hostname}
	for _, opt := range opts {
		opt(l)
	}
	if l.v == nil {
		l.v = viper.New()
	}
	return l
}

// Load resolves the configuration. Missing required settings give model.ConfigurationError.
func (l *Loader) Load() (model.Config, error) {
	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return model.Config{}, model.ConfigurationError{
				Setting: "env_file",
				Reason:  fmt.Sprintf("loading %s", l.envFile),
				Err:     err,
			}
		}
	}

	for _, src := range sources {
		if err := l.v.BindEnv(append([]string{src.key}, src.candidates...)...); err != nil {
			return model.Config{}, fmt.Errorf("binding env for %s: %w", src.key, err)
		}
		if src.def != nil {
			l.v.SetDefault(src.key, src.def)
		}
	}

	if l.v.GetString(KeyNamespace) == "" {
		return model.Config{}, model.ConfigurationError{
			Setting: KeyNamespace,
			Reason:  "not set, use " + strings.Join(candidatesOf(KeyNamespace), " or "),
		}
	}

	connectMs, err := l.getInt(KeyConnectionTimeout)
	if err != nil {
		return model.Config{}, err
	}
	readMs, err := l.getInt(KeyReadTimeout)
	if err != nil {
		return model.Config{}, err
	}

	if !l.v.IsSet(KeyPort) {
		return model.Config{}, model.ConfigurationError{
			Setting: KeyPort,
			Reason:  "not set, use " + strings.Join(candidatesOf(KeyPort), " or "),
		}
	}
	port, err := l.getInt(KeyPort)
	if err != nil {
		return model.Config{}, err
	}

	cfg := model.Config{
		Protocol:       l.v.GetString(KeyMasterProtocol),
		MasterHost:     l.v.GetString(KeyMasterHost),
		MasterPort:     l.v.GetString(KeyMasterPort),
		APIVersion:     l.v.GetString(KeyAPIVersion),
		Namespace:      l.v.GetString(KeyNamespace),
		Labels:         l.v.GetString(KeyLabels),
		TokenFile:      l.v.GetString(KeyTokenFile),
		CACertFile:     l.v.GetString(KeyCACertFile),
		ClientCertFile: l.v.GetString(KeyClientCertFile),
		ConnectTimeout: time.Duration(connectMs) * time.Millisecond,
		ReadTimeout:    time.Duration(readMs) * time.Millisecond,
		Port:           port,
		Hostname:       l.v.GetString(KeyHostname),
	}

	if cfg.Hostname == "" {
		hn, err := l.hostname()
		if err != nil {
			return model.Config{}, model.ConfigurationError{
				Setting: KeyHostname,
				Reason:  "not set and local hostname is unavailable",
				Err:     err,
			}
		}
		cfg.Hostname = hn
	}

	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}

	return cfg, nil
}

func (l *Loader) getInt(key string) (int, error) {
	val, err := cast.ToIntE(l.v.Get(key))
	if err != nil {
		return 0, model.ConfigurationError{
			Setting: key,
			Reason:  fmt.Sprintf("not an integer: %v", l.v.Get(key)),
			Err:     err,
		}
	}
	return val, nil
}

func candidatesOf(key string) []string {
	for _, src := range sources {
		if src.key == key {
			return src.candidates
		}
	}
	return nil
}
