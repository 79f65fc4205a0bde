package rest

import (
	"net/http"
	"strconv"
	"time"

	"gangablog-backend/interfaces/http/rest/handlers"
	"gangablog-backend/interfaces/http/rest/middleware"

	"gangablog-backend/infrastructure/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	articles *handlers.ArticleHandler
	shells   *handlers.ShellHandler
	surfaces *handlers.SurfaceHandler
	syncs    *handlers.SyncHandler
	sitemap  *handlers.SitemapHandler
	metrics  *observability.Collector
	logger   *zap.Logger

	allowedOrigins []string
	enableCORS     bool
}

// NewRouter creates a new router instance
func NewRouter(
	articles *handlers.ArticleHandler,
	shells *handlers.ShellHandler,
	surfaces *handlers.SurfaceHandler,
	syncs *handlers.SyncHandler,
	sitemap *handlers.SitemapHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
	allowedOrigins []string,
	enableCORS bool,
) *Router {
	return &Router{
		articles:       articles,
		shells:         shells,
		surfaces:       surfaces,
		syncs:          syncs,
		sitemap:        sitemap,
		metrics:        metrics,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		enableCORS:     enableCORS,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.StripSlashes)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.SecurityHeaders)
	if rt.metrics != nil {
		router.Use(rt.httpMetrics)
	}

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Cache"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api"), rt.logger))

		r.Get("/surfaces/{key}", rt.surfaces.Get)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/index", rt.syncs.RegenerateIndex)
			r.Post("/{id}", rt.syncs.Trigger)
		})
	})

	// Public reader routes. The navigation gate classifies page loads and
	// rewrites only dead-end navigations; content paths fall through to the
	// resolver routes below.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Navigation(middleware.DefaultExclusions(), rt.logger))

		r.Get("/", rt.shells.Home)
		r.Get("/sitemap.xml", rt.sitemap.Get)
		r.Get("/article", rt.shells.Article)
		r.Get("/category/{slug}", rt.shells.Category)
		r.Get("/{slug}", rt.articles.ResolveSlug)
		r.Get("/{category}/{slug}", rt.articles.ResolveCategorySlug)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// httpMetrics records request counts and latency per route pattern
func (rt *Router) httpMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		rt.metrics.ObserveHTTP(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
