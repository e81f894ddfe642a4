//go:build wireinject
// +build wireinject

package di

import (
	"GigCredit/internal/handler/api"
	"GigCredit/pkg/config"
	"GigCredit/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideMongoClient,
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories and supporting services
		ProvideStores,
		ProvideCacheService,
		ProvideQueue,
		ProvideEventPublisher,
		ProvideScorer,
		ProvideLimiter,

		// Use cases
		ProvideCreditUsecase,
		ProvideEligibility,
		ProvideMarketplace,
		ProvideTransactionsHandler,

		// HTTP
		api.NewCreditHandler,
		api.NewLoanHandler,
		api.NewLenderHandler,
		ProvideRouter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
