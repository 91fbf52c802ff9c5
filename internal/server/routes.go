// Package server assembles repositories, services and handlers into the
// HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"classifieds/internal/cache"
	"classifieds/internal/config"
	"classifieds/internal/middleware"
	"classifieds/internal/modules/advertiser"
	"classifieds/internal/modules/audit"
	"classifieds/internal/modules/auth"
	"classifieds/internal/modules/catalog"
	"classifieds/internal/modules/highlight"
	"classifieds/internal/modules/listing"
	"classifieds/internal/modules/moderation"
	"classifieds/internal/modules/report"
	"classifieds/internal/modules/storage"
	"classifieds/internal/pkg/jwt"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the process-wide resources the router is built from. TagCache
// and Gatherer are optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      logrus.FieldLogger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	TagCache *cache.Cache
}

// SetupRoutes wires every module under /api/v1 plus /health and /metrics.
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	objects := storage.NewService(cfg.StorageDir, cfg.PublicBaseURL, tokens)

	users := repository.NewUserRepository(d.DB)
	advertisers := repository.NewAdvertiserRepository(d.DB)
	verifications := repository.NewVerificationRepository(d.DB)
	listings := repository.NewListingRepository(d.DB)
	tags := repository.NewTagRepository(d.DB)
	plans := repository.NewPlanRepository(d.DB)
	highlights := repository.NewHighlightRepository(d.DB)
	reports := repository.NewReportRepository(d.DB)
	audits := repository.NewAuditRepository(d.DB)

	recorder := audit.NewRecorder(audits, d.Log, d.Metrics)

	// A nil *cache.Cache must not reach the services as a non-nil interface.
	var (
		tagCache       catalog.TagCache
		tagInvalidator moderation.TagInvalidator
	)
	if d.TagCache != nil {
		tagCache, tagInvalidator = d.TagCache, d.TagCache
	}

	authService := auth.NewService(users, advertisers, tokens, d.Log)
	catalogService := catalog.NewService(listings, tags, plans, tagCache, d.Log, d.Metrics)
	listingService := listing.NewService(listings, tags, plans, objects, recorder, d.Log, d.Metrics, cfg.ListingLifetime)
	reportService := report.NewService(reports, listings, recorder, d.Log, d.Metrics)
	advertiserService := advertiser.NewService(advertisers, verifications, objects, d.Log, cfg.SignedURLTTL)
	highlightService := highlight.NewService(highlights, listings, plans, objects, d.Log, cfg.HighlightLifetime)
	moderationService := moderation.NewService(moderation.Deps{
		Verifications: verifications,
		Linker:        advertiserService,
		Listings:      listings,
		Reports:       reports,
		Advertisers:   advertisers,
		Logs:          audits,
		Tags:          tags,
		TagCache:      tagInvalidator,
		Audit:         recorder,
		Log:           d.Log,
	})

	limiter := middleware.NewIPRateLimiter(cfg.ReportRateRPS, cfg.ReportRateBurst, 10*time.Minute)

	router.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(d.Log),
		middleware.AccessLog(d.Log),
		middleware.CORS(cfg.CORSAllowOrigins),
		d.Metrics.GinMiddleware(),
	)

	router.GET("/health", health(d))
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.OptionalAuth(authService))
		auth.NewHandler(authService).RegisterPublicRoutes(public)
		catalog.NewHandler(catalogService).RegisterRoutes(public)
		report.NewHandler(reportService).RegisterPublicRoutes(public, limiter.Middleware())
		storage.NewHandler(objects).RegisterRoutes(public)

		protected := v1.Group("")
		protected.Use(middleware.Authenticate(authService))
		auth.NewHandler(authService).RegisterProtectedRoutes(protected)

		advertiserGroup := protected.Group("/advertiser")
		advertiser.NewHandler(advertiserService).RegisterRoutes(advertiserGroup)
		listing.NewHandler(listingService).RegisterAdvertiserRoutes(advertiserGroup)
		highlight.NewHandler(highlightService).RegisterRoutes(advertiserGroup)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireStaff())
		listing.NewHandler(listingService).RegisterAdminRoutes(admin)
		report.NewHandler(reportService).RegisterAdminRoutes(admin)
		moderation.NewHandler(moderationService).RegisterRoutes(admin)
	}
}

func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok"}
		code := http.StatusOK
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if d.TagCache != nil {
			status["cache"] = "ok"
			if err := d.TagCache.Health(ctx); err != nil {
				status["cache"] = "unavailable"
			}
		}
		c.JSON(code, status)
	}
}
