package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/api"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/events/amqp"
	"github.com/carson-networks/ledger-server/internal/events/kafka"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/ratetable"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.Log.Level)
	logrus.SetFormatter(logger.Formatter)
	logrus.SetLevel(logger.Level)
	logger.WithField("store", envConfig.Store.Backend).Info("ledger-server starting")

	store, err := newStorage(envConfig)
	if err != nil {
		logger.WithError(err).Fatal("newStorage")
		return
	}
	defer store.Close()

	publisher, err := newPublisher(envConfig.Events)
	if err != nil {
		logger.WithError(err).Fatal("newPublisher")
		return
	}
	defer publisher.Close()

	op := operator.NewOperatorDelegator(store, publisher, envConfig.Operator.Workers, envConfig.Operator.QueueSize)
	op.Start()
	defer op.Stop()

	rates := ratetable.New(store.Settings, envConfig.Lending.Rates, envConfig.Lending.DefaultRate)
	svc := service.NewService(store, op, rates, service.OptionsFromConfig(envConfig))

	if envConfig.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret is empty, every API call will be rejected as unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		httpRest := api.Rest{
			Logger:   logger,
			Port:     envConfig.HTTP.Port,
			Storage:  store,
			Service:  svc,
			Verifier: newVerifier(envConfig.Auth),
		}
		return httpRest.Serve(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("ledger-server stopped with error")
		return
	}
	logger.Info("ledger-server stopped")
}

func newStorage(env *config.Config) (*storage.Storage, error) {
	switch env.Store.Backend {
	case config.StoreMemory:
		store, _ := memory.NewStorage(env.Store.Timeout)
		return store, nil
	case config.StorePG:
		return storage.NewStorage(env)
	default:
		return nil, fmt.Errorf("unknown store backend %q", env.Store.Backend)
	}
}

// newPublisher picks the broker named by events.backend. Entries are still committed when no
// broker is configured, they are just not announced.
func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Backend {
	case config.EventsKafka:
		return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsAMQP:
		publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		return events.Noop{}, nil
	}
}

func newVerifier(cfg config.AuthConfig) *auth.Verifier {
	if cfg.JWTSecret == "" {
		return nil
	}
	return auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
}
