package app

import (
	"github.com/payaction/channel_layer/internal/app/services/payment"
	"github.com/payaction/channel_layer/internal/app/services/registry"
	"github.com/payaction/channel_layer/internal/app/storage"
	"github.com/payaction/channel_layer/pkg/logger"
)

// Config aggregates the per-service configuration.
type Config struct {
	Registry registry.Config
	Payments payment.BuilderConfig
}

// Application wires the channel registry and the payment builder over a
// shared store and ledger client.
type Application struct {
	Registry *registry.Service
	Payments *payment.Builder

	log *logger.Logger
}

// New assembles the application services.
func New(store storage.ChannelStore, ledger payment.Ledger, cfg Config, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}
	return &Application{
		Registry: registry.New(store, cfg.Registry, log.WithField("service", "registry")),
		Payments: payment.NewBuilder(ledger, cfg.Payments, log.WithField("service", "payment")),
		log:      log,
	}
}
