package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sutura/internal/audit"
	"sutura/internal/cases"
	casesmetrics "sutura/internal/cases/metrics"
	casesservice "sutura/internal/cases/service"
	casesstore "sutura/internal/cases/store"
	"sutura/internal/jwttoken"
	"sutura/internal/platform/config"
	"sutura/internal/platform/httpserver"
	"sutura/internal/platform/logger"
	platformmetrics "sutura/internal/platform/metrics"
	"sutura/internal/platform/middleware"
	"sutura/internal/platform/postgres"
	"sutura/internal/platform/redis"
	"sutura/internal/reports"
	"sutura/internal/tasks"
	tasksmetrics "sutura/internal/tasks/metrics"
	tasksservice "sutura/internal/tasks/service"
	tasksstore "sutura/internal/tasks/store"
	"sutura/internal/users"
	usersmetrics "sutura/internal/users/metrics"
	usersservice "sutura/internal/users/service"
	usersstore "sutura/internal/users/store"
)

// main wires configuration, stores, services, and the HTTP router. Business
// logic lives in the internal service packages; this file only composes them.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence. An empty DATABASE_URL selects the in-memory stores, which
	// is enough for local development and the test suites.
	var (
		caseStore  casesservice.CaseStore
		taskStore  tasksservice.TaskStore
		userStore  usersservice.UserStore
		caseFinder tasksservice.CaseFinder
	)
	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		cs := casesstore.NewPostgres(db)
		ts := tasksstore.NewPostgres(db)
		us := usersstore.NewPostgres(db)
		for _, ensure := range []func(context.Context) error{cs.EnsureSchema, ts.EnsureSchema, us.EnsureSchema} {
			if err := ensure(ctx); err != nil {
				log.Error("schema migration failed", "error", err)
				os.Exit(1)
			}
		}
		caseStore, taskStore, userStore, caseFinder = cs, ts, us, cs
		log.Info("using postgres stores")
	} else {
		cs := casesstore.NewInMemory()
		caseStore, taskStore, userStore, caseFinder = cs, tasksstore.NewInMemory(), usersstore.NewInMemory(), cs
		log.Info("using in-memory stores")
	}

	// Audit trail. Events always land in the local store; Kafka publishing is
	// enabled when brokers are configured.
	auditOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithAsyncBuffer(256),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("kafka sink setup failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
		log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	publisher := audit.NewPublisher(audit.NewInMemoryStore(), auditOpts...)
	defer publisher.Close()

	tokens := jwttoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	caseService := cases.NewService(caseStore,
		casesservice.WithLogger(log),
		casesservice.WithAuditPublisher(publisher),
		casesservice.WithMetrics(casesmetrics.New()),
	)
	taskService := tasks.NewService(taskStore, caseFinder,
		tasksservice.WithLogger(log),
		tasksservice.WithAuditPublisher(publisher),
		tasksservice.WithMetrics(tasksmetrics.New()),
	)
	userService := users.NewService(userStore,
		usersservice.WithLogger(log),
		usersservice.WithAuditPublisher(publisher),
		usersservice.WithMetrics(usersmetrics.New()),
	)

	reportOpts := []reports.Option{reports.WithLogger(log)}
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		reportOpts = append(reportOpts, reports.WithCache(reports.NewRedisCache(redisClient), cfg.Reports.CacheTTL))
		log.Info("report snapshot cache enabled", "ttl", cfg.Reports.CacheTTL)
	}
	reportService := reports.New(caseStore, reportOpts...)

	httpMetrics := platformmetrics.New()

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Tracing)
	router.Use(middleware.Latency(httpMetrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		cases.NewHandler(caseService, log).Register(r)
		tasks.NewHandler(taskService, log).Register(r)
		users.NewHandler(userService, log).Register(r)
		reports.NewHandler(reportService, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
