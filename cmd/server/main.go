// Command server runs the consortium coordination service: the consortium
// registry and tenant roster API, instance and setting sharing, and the
// primary affiliation sync engine with its kafka listeners.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	affiliationhandler "github.com/dmytrokrutii/mod-consortia/internal/affiliation/handler"
	"github.com/dmytrokrutii/mod-consortia/internal/affiliation/listener"
	"github.com/dmytrokrutii/mod-consortia/internal/affiliation/lock"
	affiliationservice "github.com/dmytrokrutii/mod-consortia/internal/affiliation/service"
	"github.com/dmytrokrutii/mod-consortia/internal/client"
	consortiumhandler "github.com/dmytrokrutii/mod-consortia/internal/consortium/handler"
	consortiumservice "github.com/dmytrokrutii/mod-consortia/internal/consortium/service"
	consortiumstore "github.com/dmytrokrutii/mod-consortia/internal/consortium/store"
	"github.com/dmytrokrutii/mod-consortia/internal/events"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/config"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/httpserver"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/kafka"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/logger"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/metrics"
	"github.com/dmytrokrutii/mod-consortia/internal/platform/redis"
	"github.com/dmytrokrutii/mod-consortia/internal/publication"
	instancehandler "github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/handler"
	instanceservice "github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/service"
	instancestore "github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/store"
	settinghandler "github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/handler"
	settingservice "github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/service"
	settingstore "github.com/dmytrokrutii/mod-consortia/internal/sharing/setting/store"
	"github.com/dmytrokrutii/mod-consortia/internal/systemuser"
	tenanthandler "github.com/dmytrokrutii/mod-consortia/internal/tenant/handler"
	tenantservice "github.com/dmytrokrutii/mod-consortia/internal/tenant/service"
	tenantstore "github.com/dmytrokrutii/mod-consortia/internal/tenant/store"
	httptransport "github.com/dmytrokrutii/mod-consortia/internal/transport/http"
	usertenanthandler "github.com/dmytrokrutii/mod-consortia/internal/usertenant/handler"
	usertenantservice "github.com/dmytrokrutii/mod-consortia/internal/usertenant/service"
	usertenantstore "github.com/dmytrokrutii/mod-consortia/internal/usertenant/store"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		log.Error("failed to open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("postgres ping failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()
	topics := events.NewTopics(cfg.Kafka.Environment)

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, log)
	if err != nil {
		log.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	if err := producer.EnsureTopics(ctx, topics.All()...); err != nil {
		log.Warn("topic bootstrap failed, continuing", "error", err)
	}
	emitter := events.NewEmitter(producer, topics)

	// Domain services, bottom-up.
	consortia := consortiumservice.New(consortiumstore.NewPostgres(db), log)
	tenants := tenantservice.New(tenantstore.NewPostgres(db), consortia, log)
	associations := usertenantservice.New(usertenantstore.NewPostgres(db), consortia, tenants, log)

	gateway := client.NewGateway(cfg.Gateway)
	inventory := client.NewInventory(gateway)
	users := client.NewUsers(gateway)
	coordinator := client.NewPublicationCoordinator(gateway)
	syncDispatch := client.NewAffiliationSync(gateway)

	credentials := systemuser.NewProvider(cfg.SystemUser)
	publisher := publication.NewPublisher(coordinator, m, log)

	instanceSharing := instanceservice.New(instancestore.NewPostgres(db), consortia, tenants, inventory, m, log)
	settingSharing := settingservice.New(settingstore.NewPostgres(db), consortia, tenants, publisher, credentials, log)

	var locker lock.Locker = lock.NewInMemory()
	if redisClient != nil {
		locker = lock.NewRedis(redisClient)
	}
	affiliations := affiliationservice.New(users, syncDispatch, associations, tenants, emitter, locker, tx.SQL{DB: db}, m, log)

	// Kafka consumer for user lifecycle events.
	kafkaRouter := kafka.NewRouter(log)
	listener.New(consortia, tenants, associations, emitter, log).Register(kafkaRouter, topics)
	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, kafkaRouter, log)
	if err != nil {
		log.Error("failed to create kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	checks := map[string]httptransport.HealthChecker{
		"postgres": httptransport.HealthCheckFunc(db.PingContext),
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}

	router := httptransport.NewRouter(log, checks,
		consortiumhandler.New(consortia, log),
		tenanthandler.New(tenants, log),
		usertenanthandler.New(associations, log),
		instancehandler.New(instanceSharing, log),
		settinghandler.New(settingSharing, log),
		affiliationhandler.New(affiliations, tenants, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mod-consortia", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := consumer.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("service stopped")
}
