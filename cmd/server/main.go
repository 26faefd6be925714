package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"vigil/internal/audit"
	"vigil/internal/jwttoken"
	"vigil/internal/listsync"
	"vigil/internal/listsync/adapters"
	listsynchandler "vigil/internal/listsync/handler"
	listsyncmetrics "vigil/internal/listsync/metrics"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	platformredis "vigil/internal/platform/redis"
	"vigil/internal/sanctions/store"
	"vigil/internal/screening"
	screeninghandler "vigil/internal/screening/handler"
	screeningmetrics "vigil/internal/screening/metrics"
	httptransport "vigil/internal/transport/http"
)

// entityStore is what both the screening engine and the sync orchestrator
// need from a store implementation.
type entityStore interface {
	screening.EntityReader
	listsync.EntityWriter
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var entities entityStore
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		if err := store.Migrate(db); err != nil {
			log.Error("apply migrations", "error", err)
			os.Exit(1)
		}
		entities = store.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory entity store")
		entities = store.NewMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	var locker listsync.ListLocker
	if redisClient != nil {
		defer redisClient.Close()
		locker = listsync.NewRedisLocker(redisClient.Client)
	} else {
		locker = listsync.NewMemoryLocker()
	}

	var auditPublisher audit.Publisher = audit.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		auditPublisher = kafkaPublisher
	}
	defer auditPublisher.Close()

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	screenMetrics := screeningmetrics.New()
	screeningService := screening.New(entities, screeningConfig(cfg.Screening),
		screening.WithLogger(log),
		screening.WithMetrics(screenMetrics),
		screening.WithAuditPublisher(auditPublisher),
	)

	syncService := listsync.New(
		listsync.DefaultRegistry(cfg.Sync.DisabledLists...),
		map[listsync.Format]listsync.Adapter{
			listsync.FormatXML: adapters.NewXML(nil),
			listsync.FormatCSV: adapters.NewCSV(nil),
		},
		entities,
		locker,
		listsync.WithLogger(log),
		listsync.WithMetrics(listsyncmetrics.New()),
		listsync.WithAuditPublisher(auditPublisher),
		listsync.WithFetchTimeout(cfg.Sync.FetchTimeout),
		listsync.WithWorkers(cfg.Sync.Workers),
	)

	pingers := map[string]httptransport.Pinger{}
	if db != nil {
		pingers["database"] = httptransport.PingerFunc(db.PingContext)
	}
	if redisClient != nil {
		pingers["redis"] = redisClient
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Screening: screeninghandler.New(screeningService, log),
		Sync:      listsynchandler.New(syncService, log),
		Validator: jwtService,
		AdminRole: "admin",
		Logger:    log,
		Pingers:   pingers,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting vigil", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func screeningConfig(cfg config.ScreeningConfig) screening.Config {
	return screening.Config{
		Weights: screening.Weights{
			Name:    cfg.NameWeight,
			Date:    cfg.DateWeight,
			Country: cfg.CountryWeight,
		},
		Thresholds: screening.Thresholds{
			Hit:       cfg.HitThreshold,
			Review:    cfg.ReviewFloor,
			NameFloor: cfg.NameFloor,
		},
	}
}
