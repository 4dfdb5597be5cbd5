//go:build wireinject
// +build wireinject

package di

import (
	"DeskStream/pkg/config"
	"DeskStream/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// State and ingestion
		ProvideStateStore,
		ProvideTransport,
		ProvideGate,
		ProvideNormalizer,
		ProvideFeedSupervisor,

		// Account data
		ProvidePortfolioBook,
		ProvideAccountPoller,

		// Display surface
		ProvideBroker,
		ProvideDashboardHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
