package main

import (
	"context"
	"flag"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/eventgate/scanlink/internal/config"
	"github.com/eventgate/scanlink/internal/infra/database"
	"github.com/eventgate/scanlink/internal/infra/repository"
	"github.com/eventgate/scanlink/internal/interface/rest"
	"github.com/eventgate/scanlink/internal/service"
	"github.com/eventgate/scanlink/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.MigratePostgres(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	cacheDB, err := database.NewLocalCacheDB(ctx, conf.Server.LocalCache)
	if err != nil {
		log.Fatalf("failed to open local mapping cache: %v", err)
	}
	defer cacheDB.Close()

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	mappingRepo := repository.NewMappingRepository(db)
	localCache := repository.NewLocalCache(cacheDB)
	attendeeRepo := repository.NewAttendeeRepository(db)
	eventRepo := repository.NewEventRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)

	signal := service.NewSignalService(rdb)
	presence := service.NewPresenceService(mc)

	mappingUC := usecase.NewMappingUsecase(mappingRepo, localCache)
	registrationUC := usecase.NewRegistrationUsecase(attendeeRepo, mappingUC)
	checkinUC := usecase.NewCheckinUsecase(mappingUC, eventRepo, checkinRepo, signal)
	eventUC := usecase.NewEventUsecase(eventRepo)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if conf.Server.EnableTrace {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(conf.Server.TraceEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			log.Fatalf("failed to create trace exporter: %v", err)
		}
		provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(provider)
		defer func() {
			if err := provider.Shutdown(ctx); err != nil {
				log.Printf("failed to shutdown trace provider: %v", err)
			}
		}()
		e.Use(otelecho.Middleware("scanlink"))
	}

	handler := rest.NewHandler(conf, mappingUC, registrationUC, checkinUC, eventUC, signal, presence)
	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
