package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/service"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/health"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/middleware"
)

// RouterConfig carries the knobs the router needs beyond its handlers.
type RouterConfig struct {
	CORSOrigins []string
	PprofCIDRs  []string
}

// NewRouter creates a chi router with all draft order service routes
// registered.
func NewRouter(
	draftService *service.DraftService,
	catalog service.CatalogSource,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("draft"))
	r.Use(middleware.Tracing("draft"))
	r.Use(middleware.RequestLogger(logger))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}
	r.Use(middleware.CORS(corsCfg))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	draftHandler := NewDraftHandler(draftService, logger)
	catalogHandler := NewCatalogHandler(catalog, logger)

	// The catalog snapshot is the same for every user and changes slowly;
	// let clients cache it briefly.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(middleware.CacheControl(30))
		r.Get("/", catalogHandler.ListProducts)
	})

	r.Route("/api/v1/draft", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(UserIDFromHeader)

		r.Get("/", draftHandler.GetDraft)
		r.Delete("/", draftHandler.DiscardDraft)

		r.Post("/lines", draftHandler.AddLine)
		r.Put("/lines/{lineId}/quantity", draftHandler.SetLineQuantity)
		r.Put("/lines/{lineId}/product", draftHandler.SetLineProduct)
		r.Delete("/lines/{lineId}", draftHandler.RemoveLine)

		r.Post("/submit", draftHandler.SubmitDraft)
	})

	return r
}
