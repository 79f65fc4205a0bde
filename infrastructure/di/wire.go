//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
)

// InitializeContainer assembles the application. Regenerate wire_gen.go
// with `wire ./infrastructure/di` after changing the provider set.
func InitializeContainer(ctx context.Context) (*Container, error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideAWSConfig,
		ProvideDynamoDBClient,
		ProvideEventBridgeClient,
		ProvideContentStore,
		ProvideArtifactStore,
		ProvideCacheStore,
		ProvideEventPublisher,
		ProvideCollector,
		ProvideSiteIndexer,
		ProvidePublicationSync,
		ProvideResolver,
		ProvideSurfaceCache,
		ProvideFetchers,
		ProvideRouter,
		newContainer,
	)
	return nil, nil
}
