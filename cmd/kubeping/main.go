package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/horockey/kubeping"
	"github.com/horockey/kubeping/internal/config"
	"github.com/horockey/kubeping/internal/controller/http_controller/dto"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().
		Timestamp().
		Str("scope", "kubeping").
		Logger()

	if err := run(logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Send()
	}
}

func run(logger zerolog.Logger) error {
	flags := pflag.NewFlagSet("kubeping", pflag.ContinueOnError)
	envFile := flags.String("env-file", "", "load variables from this .env file first")
	listen := flags.String("listen", "", "serve GET /members and GET /metrics on this address")
	interval := flags.Duration("interval", 0, "repeat discovery with this interval, 0 runs once")
	logLevel := flags.String("log-level", "info", "zerolog level")
	flags.String(config.KeyNamespace, "", "namespace of the workload pods")
	flags.String(config.KeyLabels, "", "label selector of the workload pods")
	flags.Int(config.KeyPort, 0, "cluster listen port advertised for peers")
	flags.String(config.KeyHostname, "", "local pod name, defaults to the OS hostname")
	flags.String(config.KeyMasterHost, "", "Kubernetes API host")
	flags.String(config.KeyMasterPort, "", "Kubernetes API port")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	logger = logger.Level(lvl)

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	loaderOpts := []config.LoaderOption{config.WithViper(v)}
	if *envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	providerOpts := lo.Ternary(
		*listen != "",
		[]kubeping.Option{kubeping.WithLogger(logger), kubeping.WithHTTPAddr(*listen)},
		[]kubeping.Option{kubeping.WithLogger(logger)},
	)

	provider, err := kubeping.New(cfg, providerOpts...)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *listen != "" {
		return provider.Start(ctx)
	}

	enc := json.NewEncoder(os.Stdout)
	for {
		members, err := provider.Discover(ctx)
		switch {
		case err != nil && *interval == 0:
			return fmt.Errorf("discovering members: %w", err)
		case err == nil:
			if err := enc.Encode(lo.Map(members, func(el kubeping.Member, _ int) dto.Member {
				return dto.NewMember(el)
			})); err != nil {
				return fmt.Errorf("writing members: %w", err)
			}
		}

		if *interval == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(*interval):
		}
	}
}
