// Package di wires the application together. Providers are plain
// constructors; wire.go declares the injector and wire_gen.go carries the
// generated form.
package di

import (
	"context"
	"fmt"
	"net/http"

	"gangablog-backend/application/cache"
	"gangablog-backend/application/ports"
	"gangablog-backend/application/resolver"
	"gangablog-backend/application/sync"
	"gangablog-backend/infrastructure/config"
	"gangablog-backend/infrastructure/messaging/eventbridge"
	"gangablog-backend/infrastructure/observability"
	dynamoStore "gangablog-backend/infrastructure/persistence/dynamodb"
	"gangablog-backend/infrastructure/persistence/memory"
	supabaseStore "gangablog-backend/infrastructure/persistence/supabase"
	"gangablog-backend/infrastructure/render"
	"gangablog-backend/interfaces/http/rest"
	"gangablog-backend/interfaces/http/rest/handlers"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	supabase "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Container holds the assembled application
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Handler http.Handler
	Metrics *observability.Collector
	Sync    *sync.PublicationSync

	watcher *config.Watcher
	tracing func(context.Context) error
}

// Shutdown releases background resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.watcher != nil {
		c.watcher.Stop()
	}
	if c.tracing != nil {
		if err := c.tracing(ctx); err != nil {
			return err
		}
	}
	return c.Logger.Sync()
}

// ProvideConfig loads the environment configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideLogger builds the zap logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideAWSConfig loads the default AWS SDK configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
}

// ProvideDynamoDBClient creates the DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates the EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideContentStore selects the content store implementation. Development
// with no table configured runs on the in-memory store.
func ProvideContentStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ContentStore {
	if cfg.IsDevelopment() && cfg.ContentTable == "" {
		logger.Warn("no content table configured, using in-memory content store")
		return memory.NewContentStore()
	}
	return dynamoStore.NewContentStore(client, cfg.ContentTable, logger)
}

// ProvideArtifactStore selects the artifact store implementation
func ProvideArtifactStore(cfg *config.Config, logger *zap.Logger) (ports.ArtifactStore, error) {
	if cfg.SupabaseURL == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("artifact store requires SUPABASE_URL in production")
		}
		logger.Warn("no storage configured, using in-memory artifact store")
		return memory.NewArtifactStore(), nil
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return supabaseStore.NewArtifactStore(client.Storage, cfg.SupabaseBucket, logger), nil
}

// ProvideCacheStore creates the surface cache substrate
func ProvideCacheStore() ports.CacheStore {
	return memory.NewCacheStore()
}

// ProvideEventPublisher creates the sync event publisher; a blank bus name
// disables publication entirely
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCollector creates the metrics collector when metrics are enabled
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("gangablog")
}

// ProvideSiteIndexer creates the site index generator
func ProvideSiteIndexer(contentStore ports.ContentStore, artifactStore ports.ArtifactStore, cfg *config.Config, logger *zap.Logger) *sync.SiteIndexer {
	return sync.NewSiteIndexer(
		contentStore, artifactStore, cfg.Domain, cfg.StaticPages, cfg.SitemapLimit, logger)
}

// ProvidePublicationSync creates the publication synchronizer
func ProvidePublicationSync(
	contentStore ports.ContentStore,
	artifactStore ports.ArtifactStore,
	indexer *sync.SiteIndexer,
	publisher ports.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *sync.PublicationSync {
	return sync.NewPublicationSync(
		contentStore, artifactStore, indexer, publisher, render.Default(), cfg.Domain, logger)
}

// ProvideResolver creates the slug resolver
func ProvideResolver(artifactStore ports.ArtifactStore, contentStore ports.ContentStore, cfg *config.Config, logger *zap.Logger) *resolver.Resolver {
	return resolver.NewResolver(artifactStore, contentStore, resolver.Options{
		Domain:         cfg.Domain,
		BatchSize:      cfg.ResolverBatchSize,
		ArtifactMaxAge: cfg.ArtifactMaxAge,
	}, logger)
}

// ProvideSurfaceCache creates the surface cache
func ProvideSurfaceCache(store ports.CacheStore, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *cache.SurfaceCache {
	sc := cache.NewSurfaceCache(
		store, cache.NewDetector(cache.DefaultSignatures()), cfg.CacheTTL, logger)
	if metrics != nil {
		sc.OnPurge(func(signature string) {
			metrics.CachePurges.WithLabelValues(signature).Inc()
		})
	}
	return sc
}

// ProvideFetchers creates the surface fetcher factory
func ProvideFetchers(contentStore ports.ContentStore, cfg *config.Config) *cache.Fetchers {
	return cache.NewFetchers(contentStore, cfg.Domain)
}

// ProvideRouter assembles the HTTP handler tree
func ProvideRouter(
	res *resolver.Resolver,
	contentStore ports.ContentStore,
	artifactStore ports.ArtifactStore,
	surfaceCache *cache.SurfaceCache,
	fetchers *cache.Fetchers,
	pub *sync.PublicationSync,
	indexer *sync.SiteIndexer,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	shells := handlers.NewShellHandler(contentStore, cfg.Domain, logger)
	router := rest.NewRouter(
		handlers.NewArticleHandler(res, shells, metrics, logger),
		shells,
		handlers.NewSurfaceHandler(surfaceCache, fetchers, metrics, logger),
		handlers.NewSyncHandler(pub, metrics, logger),
		handlers.NewSitemapHandler(artifactStore, indexer, logger),
		metrics,
		logger,
		cfg.AllowedOrigins,
		cfg.EnableCORS,
	)
	return router.Setup()
}

// attachTunables starts the tunables watcher when a path is configured.
// Only the knobs that are safe to swap at runtime listen for changes.
func attachTunables(c *Container, surfaceCache *cache.SurfaceCache) error {
	if c.Config.TunablesPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(c.Config.TunablesPath, c.Logger)
	if err != nil {
		return err
	}
	surfaceCache.SetTTL(watcher.Current().Cache.TTL)
	watcher.OnChange(func(t *config.Tunables) {
		surfaceCache.SetTTL(t.Cache.TTL)
	})
	c.watcher = watcher
	return nil
}

// newContainer finishes assembly: tunables watcher and tracing are the two
// lifecycle-bearing pieces the container has to own for shutdown.
func newContainer(
	cfg *config.Config,
	logger *zap.Logger,
	handler http.Handler,
	metrics *observability.Collector,
	pub *sync.PublicationSync,
	surfaceCache *cache.SurfaceCache,
) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Handler: handler,
		Metrics: metrics,
		Sync:    pub,
	}

	if err := attachTunables(c, surfaceCache); err != nil {
		return nil, err
	}

	if cfg.EnableTracing {
		tp, err := observability.InitTracing("gangablog-backend", cfg.Environment, "")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		c.tracing = tp.Shutdown
	}

	return c, nil
}
