// Server entrypoint: wires configuration, infrastructure clients, stores,
// services, and the HTTP router. Business logic lives in the internal
// packages; this file only connects them and owns the process lifecycle.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrius/internal/audit"
	"qrius/internal/cache"
	cachemetrics "qrius/internal/cache/metrics"
	domainhandler "qrius/internal/domains/handler"
	domainmetrics "qrius/internal/domains/metrics"
	domainservice "qrius/internal/domains/service"
	domainstore "qrius/internal/domains/store"
	"qrius/internal/hosting"
	"qrius/internal/identity"
	linkhandler "qrius/internal/links/handler"
	linkmetrics "qrius/internal/links/metrics"
	linkservice "qrius/internal/links/service"
	linkstore "qrius/internal/links/store"
	"qrius/internal/orgs"
	orgstore "qrius/internal/orgs/store"
	"qrius/internal/platform/config"
	"qrius/internal/platform/httpserver"
	"qrius/internal/platform/logger"
	"qrius/internal/platform/postgres"
	platformredis "qrius/internal/platform/redis"
	"qrius/internal/resolve"
	httptransport "qrius/internal/transport/http"
)

const cacheTTL = 24 * time.Hour

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db == nil {
		log.Warn("DATABASE_URL not set; using in-memory stores")
	} else {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var redirectCache cache.RedirectCache
	if redisClient != nil {
		redirectCache = cache.NewRedis(redisClient.Client, cacheTTL, cachemetrics.New())
	} else {
		log.Warn("REDIS_URL not set; using in-memory cache")
		redirectCache = cache.NewInMemory()
	}

	var (
		domainsStore domainservice.DomainStore
		linksStore   linkservice.LinkStore
		orgsStore    orgs.Store
	)
	if db != nil {
		domainsStore = domainstore.NewPostgres(db)
		linksStore = linkstore.NewPostgres(db)
		orgsStore = orgstore.NewPostgres(db)
	} else {
		domainsStore = domainstore.NewInMemory()
		linksStore = linkstore.NewInMemory()
		orgsStore = orgstore.NewInMemory()
	}

	var auditor audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(ctx); err != nil {
				log.Warn("audit publisher close failed", "error", err)
			}
		}()
		auditor = kafka
	} else {
		auditor = audit.NewLogPublisher(log)
	}

	provider := hosting.NewClient(cfg.Hosting)
	if !cfg.Hosting.Configured() {
		log.Warn("hosting provider not configured; domain registration is skipped and verification auto-succeeds")
	}
	if cfg.BaseDomain == "" {
		log.Warn("PLATFORM_BASE_DOMAIN not set; subdomain creation is disabled")
	}

	orgService := orgs.New(orgsStore, log)
	domainService := domainservice.New(domainsStore, orgService, redirectCache, provider, cfg.BaseDomain, cfg.Hosting.Configured(),
		domainservice.WithLogger(log),
		domainservice.WithMetrics(domainmetrics.New()),
		domainservice.WithAuditPublisher(auditor),
	)
	linkService := linkservice.New(linksStore, redirectCache,
		linkservice.WithLogger(log),
		linkservice.WithMetrics(linkmetrics.New()),
		linkservice.WithAuditPublisher(auditor),
	)
	resolver := resolve.New(redirectCache, linksStore, domainsStore, cfg.BaseDomain, log)

	checks := map[string]httptransport.HealthChecker{}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	if db != nil {
		checks["postgres"] = dbChecker{db}
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Validator: identity.NewJWTValidator(cfg.JWTSigningKey),
		Domains:   domainhandler.New(domainService, orgService, log),
		Links:     linkhandler.New(linkService, orgService, log),
		Redirect:  resolve.NewHandler(resolver, log),
		Checks:    checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

type dbChecker struct {
	db *sql.DB
}

func (c dbChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
